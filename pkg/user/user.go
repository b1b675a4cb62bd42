package user

type User struct {
	Uid         string `json:"uid"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Timezone    string `json:"timezone"`
	// PartnerUid links this user to their partner's couple space, empty when unpaired.
	PartnerUid string `json:"partnerUid,omitempty"`
}
