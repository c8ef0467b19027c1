// Package action defines the closed set of request kinds an app may send and
// the untrusted request that carries them.
package action

// Kind identifies one of the closed set of actions an app may request.
type Kind string

const (
	GetUserAccount              Kind = "GET_USER_ACCOUNT"
	LinkToQDNResource           Kind = "LINK_TO_QDN_RESOURCE"
	QDNResourceDisplayed        Kind = "QDN_RESOURCE_DISPLAYED"
	PublishQDNResource          Kind = "PUBLISH_QDN_RESOURCE"
	PublishMultipleQDNResources Kind = "PUBLISH_MULTIPLE_QDN_RESOURCES"
	SendChatMessage             Kind = "SEND_CHAT_MESSAGE"
	JoinGroup                   Kind = "JOIN_GROUP"
	DeployAT                    Kind = "DEPLOY_AT"
	GetWalletBalance            Kind = "GET_WALLET_BALANCE"
	SendCoin                    Kind = "SEND_COIN"
	GetListItems                Kind = "GET_LIST_ITEMS"
	AddListItems                Kind = "ADD_LIST_ITEMS"
	DeleteListItem              Kind = "DELETE_LIST_ITEM"
	EncryptData                 Kind = "ENCRYPT_DATA"
	DecryptData                 Kind = "DECRYPT_DATA"
	SaveFile                    Kind = "SAVE_FILE"
)

var kinds = []Kind{
	GetUserAccount,
	LinkToQDNResource,
	QDNResourceDisplayed,
	PublishQDNResource,
	PublishMultipleQDNResources,
	SendChatMessage,
	JoinGroup,
	DeployAT,
	GetWalletBalance,
	SendCoin,
	GetListItems,
	AddListItems,
	DeleteListItem,
	EncryptData,
	DecryptData,
	SaveFile,
}

// Kinds returns all known action kinds.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// IsKnown reports whether k belongs to the closed action set.
func (k Kind) IsKnown() bool {
	for _, candidate := range kinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// IsNotification reports whether k is a one-way display notification that
// never receives a reply.
func (k Kind) IsNotification() bool {
	return k == LinkToQDNResource || k == QDNResourceDisplayed
}

func (k Kind) String() string {
	return string(k)
}
