// Package healthkeys names the Redis keys shared by the request marker, the health
// endpoints and the notification dispatcher.
package healthkeys

const (
	ReqTotal  = "health:global:req_total"
	ReqErrors = "health:global:req_errors"
	ResTime   = "health:global:res_time_total"
	ResCount  = "health:global:res_count"
	StartTime = "health:global:start_time"
	LastReq   = "health:global:last_request"
	ErrorLog  = "health:global:error_log"

	// ErrorLogMax bounds the error log list.
	ErrorLogMax = 50
)

// All lists every key, for resets.
var All = []string{ReqTotal, ReqErrors, ResTime, ResCount, StartTime, LastReq, ErrorLog}
