package model

// User mirrors the contract's User struct. The service never mutates
// this locally; it is read through the contract gateway only.
type User struct {
	Address   string `json:"address"`
	Username  string `json:"username"`
	Exists    bool   `json:"exists"`
	CreatedAt int64  `json:"createdAt"` // Unix seconds, as stored on-chain
}

// Link is one key/value pair from a profile's ordered link list
// (contract UserData struct).
type Link struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
