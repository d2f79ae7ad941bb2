package errors

// Messages returned verbatim in the {"error": ...} body.
const (
	// 通用错误
	MsgInternalServer = "Internal Server Error"
	MsgUnauthorized   = "Unauthorized"
	MsgNotFound       = "Not found"

	// 用户错误
	MsgMissingEmail    = "Missing email"
	MsgMissingPassword = "Missing password"
	MsgAlreadyExist    = "Already exist"
	MsgInvalidEmail    = "Invalid email"
	MsgPasswordTooLong = "Password too long"

	// 文件错误
	MsgMissingName        = "Missing name"
	MsgMissingType        = "Missing type"
	MsgMissingData        = "Missing data"
	MsgParentNotFound     = "Parent not found"
	MsgParentNotFolder    = "Parent is not a folder"
	MsgFolderHasNoContent = "A folder doesn't have content"
	MsgInvalidSize        = "Invalid size"
	MsgInvalidBody        = "Invalid request body"
)
