package claims

// Update carries the fields a caller may copy into a SessionToken. Pointer
// fields distinguish "absent" from "set to zero". Decoding an untrusted
// payload into Update drops every key outside this set, which is what makes
// the merge an allow-list rather than a wildcard copy.
//
// The same struct is used for identity-provider results at first login and
// for authenticated update-trigger payloads.
type Update struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Mobile          *string `json:"mobile"`
	Role            *string `json:"role"`
	DisplayRoleName *string `json:"displayRoleName"`
	BackendToken    *string `json:"token"`
	UserID          *string `json:"_id"`
	ProfileColor    *string `json:"profileColor"`
	ProfilePicture  *string `json:"profilePicture"`
	TimeZone        *string `json:"timeZone"`
	Theme           *string `json:"theme"`
	DeviceID        *string `json:"deviceId"`
	CanImpersonate  *bool   `json:"canImpersonate"`

	Subdomain         *string `json:"subdomain"`
	BrandID           *string `json:"brandId"`
	Brand             *string `json:"brand"`
	ActiveBrandsCount *int    `json:"activeBrandsCount"`
	RecentBrandID     *string `json:"recentBrandId"`
	RecentBoardID     *string `json:"recentBoardId"`
	RecentWorkspaceID *string `json:"recentWorkspaceId"`
	RecentDashboardID *string `json:"recentDashboardId"`

	Provider     *string `json:"provider"`
	IDToken      *string `json:"idToken"`
	RefreshToken *string `json:"refreshToken"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u Update) IsEmpty() bool {
	return u == Update{}
}

// Apply copies every present field of u into the token. Both the first-login
// merge and the update trigger go through here, so the allow-list cannot
// diverge between them. Applying the same update twice is idempotent.
func (t *SessionToken) Apply(u Update) {
	setString(&t.Name, u.Name)
	setString(&t.Email, u.Email)
	setString(&t.Mobile, u.Mobile)
	setString(&t.Role, u.Role)
	setString(&t.DisplayRoleName, u.DisplayRoleName)
	setString(&t.BackendToken, u.BackendToken)
	setString(&t.UserID, u.UserID)
	setString(&t.ProfileColor, u.ProfileColor)
	setString(&t.ProfilePicture, u.ProfilePicture)
	setString(&t.TimeZone, u.TimeZone)
	setString(&t.Theme, u.Theme)
	setString(&t.DeviceID, u.DeviceID)
	if u.CanImpersonate != nil {
		t.CanImpersonate = *u.CanImpersonate
	}
	setString(&t.Subdomain, u.Subdomain)
	setString(&t.BrandID, u.BrandID)
	setString(&t.Brand, u.Brand)
	if u.ActiveBrandsCount != nil {
		t.ActiveBrandsCount = *u.ActiveBrandsCount
	}
	setString(&t.RecentBrandID, u.RecentBrandID)
	setString(&t.RecentBoardID, u.RecentBoardID)
	setString(&t.RecentWorkspaceID, u.RecentWorkspaceID)
	setString(&t.RecentDashboardID, u.RecentDashboardID)
	setString(&t.Provider, u.Provider)
	setString(&t.IDToken, u.IDToken)
	setString(&t.RefreshToken, u.RefreshToken)
}

// FromIdentity builds the token claims at sign-in. The identity result is
// merged through the allow-list, then the tenant claim is pinned to the
// trusted derivation (signed state, else callback URL host). A tenant field
// inside the identity payload only survives when no derivation exists, which
// covers the credentials backend reporting the user's membership.
func FromIdentity(existing SessionToken, identity Update, derivedTenant string) SessionToken {
	tok := existing
	tok.Apply(identity)
	if derivedTenant != "" {
		tok.Subdomain = derivedTenant
	}
	return tok
}

// HasTenantMembership reports whether an identity result names a tenant the
// user belongs to. Credentials sign-ins without membership are rejected.
func (u Update) HasTenantMembership() bool {
	return (u.Subdomain != nil && *u.Subdomain != "") || (u.BrandID != nil && *u.BrandID != "")
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
