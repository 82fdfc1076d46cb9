package errs

var (
	SystemError          = ErrorCode{Code: 501001, Msg: "系统错误"}
	DuplicateEmail       = ErrorCode{Code: 501002, Msg: "邮箱已被注册"}
	InvalidEmailOrPasswd = ErrorCode{Code: 501003, Msg: "邮箱或密码错误"}
	AddressNotFound      = ErrorCode{Code: 501004, Msg: "地址不存在"}
)

type ErrorCode struct {
	Code int
	Msg  string
}
