// Package claims defines the session claim set and the projections into and
// out of it. The same explicit field allow-list governs both the first-login
// merge and the authenticated update trigger, so the two paths cannot drift
// apart.
package claims

// SessionToken is the durable claim set bound into the signed session
// cookie. It is the only source of truth for an authenticated principal;
// ClientSession is a read-only projection of it.
type SessionToken struct {
	// Identity attributes
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	Mobile          string `json:"mobile,omitempty"`
	Role            string `json:"role,omitempty"`
	DisplayRoleName string `json:"displayRoleName,omitempty"`
	BackendToken    string `json:"token,omitempty"`
	UserID          string `json:"_id,omitempty"`
	ProfileColor    string `json:"profileColor,omitempty"`
	ProfilePicture  string `json:"profilePicture,omitempty"`
	TimeZone        string `json:"timeZone,omitempty"`
	Theme           string `json:"theme,omitempty"`
	DeviceID        string `json:"deviceId,omitempty"`
	CanImpersonate  bool   `json:"canImpersonate,omitempty"`

	// Tenancy attributes. Subdomain is set once at sign-in from a trusted
	// derivation and is only overwritten by the authenticated update trigger.
	Subdomain         string `json:"subdomain,omitempty"`
	BrandID           string `json:"brandId,omitempty"`
	Brand             string `json:"brand,omitempty"`
	ActiveBrandsCount int    `json:"activeBrandsCount,omitempty"`
	RecentBrandID     string `json:"recentBrandId,omitempty"`
	RecentBoardID     string `json:"recentBoardId,omitempty"`
	RecentWorkspaceID string `json:"recentWorkspaceId,omitempty"`
	RecentDashboardID string `json:"recentDashboardId,omitempty"`

	// Provider attributes
	Provider     string `json:"provider,omitempty"`
	IDToken      string `json:"idToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// ClientSession is the subset of SessionToken intentionally exposed to
// front-end code. The refresh token never leaves the server.
type ClientSession struct {
	Name              string `json:"name,omitempty"`
	Email             string `json:"email,omitempty"`
	Mobile            string `json:"mobile,omitempty"`
	Role              string `json:"role,omitempty"`
	DisplayRoleName   string `json:"displayRoleName,omitempty"`
	BackendToken      string `json:"token,omitempty"`
	UserID            string `json:"_id,omitempty"`
	ProfileColor      string `json:"profileColor,omitempty"`
	ProfilePicture    string `json:"profilePicture,omitempty"`
	TimeZone          string `json:"timeZone,omitempty"`
	Theme             string `json:"theme,omitempty"`
	DeviceID          string `json:"deviceId,omitempty"`
	CanImpersonate    bool   `json:"canImpersonate,omitempty"`
	Subdomain         string `json:"subdomain,omitempty"`
	BrandID           string `json:"brandId,omitempty"`
	Brand             string `json:"brand,omitempty"`
	ActiveBrandsCount int    `json:"activeBrandsCount,omitempty"`
	RecentBrandID     string `json:"recentBrandId,omitempty"`
	RecentBoardID     string `json:"recentBoardId,omitempty"`
	RecentWorkspaceID string `json:"recentWorkspaceId,omitempty"`
	RecentDashboardID string `json:"recentDashboardId,omitempty"`
	Provider          string `json:"provider,omitempty"`
	IDToken           string `json:"idToken,omitempty"`
}

// IntoSession projects the token into its client-visible form. Pure and
// total; it never reflects anything the client sent.
func (t SessionToken) IntoSession() ClientSession {
	return ClientSession{
		Name:              t.Name,
		Email:             t.Email,
		Mobile:            t.Mobile,
		Role:              t.Role,
		DisplayRoleName:   t.DisplayRoleName,
		BackendToken:      t.BackendToken,
		UserID:            t.UserID,
		ProfileColor:      t.ProfileColor,
		ProfilePicture:    t.ProfilePicture,
		TimeZone:          t.TimeZone,
		Theme:             t.Theme,
		DeviceID:          t.DeviceID,
		CanImpersonate:    t.CanImpersonate,
		Subdomain:         t.Subdomain,
		BrandID:           t.BrandID,
		Brand:             t.Brand,
		ActiveBrandsCount: t.ActiveBrandsCount,
		RecentBrandID:     t.RecentBrandID,
		RecentBoardID:     t.RecentBoardID,
		RecentWorkspaceID: t.RecentWorkspaceID,
		RecentDashboardID: t.RecentDashboardID,
		Provider:          t.Provider,
		IDToken:           t.IDToken,
	}
}
