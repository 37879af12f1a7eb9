package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：调用方可修正的错误，HTTP 状态码取前三位
// - 5xxx：系统错误
const (
	OK               = 0
	BadRequest       = 4000
	Unauthorized     = 4010
	Forbidden        = 4030
	NotFound         = 4040
	Conflict         = 4090
	ValidationFailed = 4220
	TooManyRequests  = 4290
	SystemError      = 5000
)
