package model

// A Comment is a public remark left on an item.
type Comment struct {
	Base `msgpack:",inline" storm:"inline"`

	ItemID string `json:"item_id" msgpack:"item_id" storm:"index"`
	UserID string `json:"user_id" msgpack:"user_id" storm:"index"`
	Author string `json:"author"  msgpack:"author"`
	Text   string `json:"text"    msgpack:"text"`
}
