package intake

// Сообщения, которые видит кандидат
const (
	MsgValidation  = "Vui lòng nhập họ tên và số điện thoại."
	MsgSubmitError = "Có lỗi xảy ra khi gửi đơn. Vui lòng thử lại sau."

	MsgThankYouTitle = "Cảm ơn!"
	MsgThankYouBody  = "Đơn ứng tuyển của bạn đã được gửi thành công."
	MsgSubmitAnother = "Gửi đơn khác"
)
