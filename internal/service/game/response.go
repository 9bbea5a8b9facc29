package game

import "encoding/json"

// 响应类型
const (
	RESP_MESSAGE = "Message"
	RESP_ERROR   = "Error"
)

type MessageResponse struct {
	Type string  `json:"type"`
	From *string `json:"from"`
	Text string  `json:"text"`
}

type ErrorResponse struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response 是下发给客户端的载荷，Message 与 Err 恰有一个非空
type Response struct {
	Message *MessageResponse
	Err     *ErrorResponse
}

func (r Response) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(r.Err)
	}

	return json.Marshal(r.Message)
}

// MessageResp 构造一条聊天消息，from 为 nil 表示系统播报
func MessageResp(from *string, text string) Response {
	return Response{
		Message: &MessageResponse{
			Type: RESP_MESSAGE,
			From: from,
			Text: text,
		},
	}
}

func ErrResp(err error) Response {
	return Response{
		Err: &ErrorResponse{
			Type:    RESP_ERROR,
			Code:    ErrorCode(err),
			Message: ErrorMessage(err),
		},
	}
}
