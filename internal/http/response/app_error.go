package response

// AppError 接口错误：业务码、对外消息与内部原因
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Detail 对外暴露的错误详情，仅服务端错误返回原因
func (e *AppError) Detail() string {
	if e == nil || e.Err == nil || e.Code < CodeInternal {
		return ""
	}
	return e.Err.Error()
}

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
