package model

// A Message is a chat line between a user and the administrators.
// ThreadID is the id of the non-admin user owning the conversation.
type Message struct {
	Base `msgpack:",inline" storm:"inline"`

	ThreadID     string `json:"thread_id"      msgpack:"thread_id"      storm:"index"`
	SenderID     string `json:"sender_id"      msgpack:"sender_id"`
	SenderEmail  string `json:"sender_email"   msgpack:"sender_email"`
	FromAdmin    bool   `json:"from_admin"     msgpack:"from_admin"`
	Text         string `json:"text"           msgpack:"text"`
	SharedItemID string `json:"shared_item_id" msgpack:"shared_item_id"`
	Read         bool   `json:"read"           msgpack:"read"`
}
