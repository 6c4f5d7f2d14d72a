package spark

import "time"

type Room struct {
	Id           string    `json:"id"`
	Title        string    `json:"title"`
	Type         string    `json:"type,omitempty"`
	IsLocked     bool      `json:"isLocked,omitempty"`
	CreatorId    string    `json:"creatorId,omitempty"`
	LastActivity time.Time `json:"lastActivity,omitempty"`
	Created      time.Time `json:"created"`
}

type Webhook struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	TargetUrl string    `json:"targetUrl"`
	Resource  string    `json:"resource"`
	Event     string    `json:"event"`
	Filter    string    `json:"filter,omitempty"`
	Secret    string    `json:"secret,omitempty"`
	Status    string    `json:"status,omitempty"`
	Created   time.Time `json:"created"`
}

type CreateWebhookParams struct {
	Name      string `json:"name"`
	TargetUrl string `json:"targetUrl"`
	Resource  string `json:"resource"`
	Event     string `json:"event"`
	Filter    string `json:"filter,omitempty"`
	Secret    string `json:"secret,omitempty"`
}

type Message struct {
	Id          string    `json:"id"`
	RoomId      string    `json:"roomId"`
	RoomType    string    `json:"roomType,omitempty"`
	Text        string    `json:"text"`
	PersonId    string    `json:"personId"`
	PersonEmail string    `json:"personEmail"`
	Created     time.Time `json:"created"`
}

type CreateMessageParams struct {
	RoomId string `json:"roomId"`
	Text   string `json:"text"`
}

type Person struct {
	Id          string    `json:"id"`
	Emails      []string  `json:"emails,omitempty"`
	DisplayName string    `json:"displayName"`
	NickName    string    `json:"nickName,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	OrgId       string    `json:"orgId,omitempty"`
	Created     time.Time `json:"created,omitempty"`
}

// Authorization is the token pair issued by the OAuth access_token endpoint.
type Authorization struct {
	AccessToken           string `json:"access_token"`
	ExpiresIn             int64  `json:"expires_in,omitempty"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in,omitempty"`
}

type ExchangeCodeParams struct {
	ClientId     string
	ClientSecret string
	Code         string
	RedirectURI  string
}

// WebhookEvent is the body the platform POSTs to a webhook's targetUrl.
type WebhookEvent struct {
	Id        string      `json:"id"`
	Name      string      `json:"name"`
	TargetUrl string      `json:"targetUrl,omitempty"`
	Resource  string      `json:"resource"`
	Event     string      `json:"event"`
	Filter    string      `json:"filter,omitempty"`
	ActorId   string      `json:"actorId,omitempty"`
	Data      WebhookData `json:"data"`
}

type WebhookData struct {
	Id          string `json:"id"`
	RoomId      string `json:"roomId"`
	PersonId    string `json:"personId"`
	PersonEmail string `json:"personEmail,omitempty"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}
