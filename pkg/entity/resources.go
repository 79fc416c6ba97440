package entity

import "net/http"

// Shared codecs. Create and edit forms reference the same instance so labels
// and codes cannot drift apart.
var (
	TicketStatus = NewEnumCodec(
		EnumValue{Label: "Open", Code: "open"},
		EnumValue{Label: "In Progress", Code: "in-progress"},
		EnumValue{Label: "Resolved", Code: "resolved"},
		EnumValue{Label: "Closed", Code: "closed"},
	)
	TicketPriority = NewEnumCodec(
		EnumValue{Label: "Low", Code: "low"},
		EnumValue{Label: "Medium", Code: "medium"},
		EnumValue{Label: "High", Code: "high"},
	)
	ReleaseStatus = NewEnumCodec(
		EnumValue{Label: "Pending", Code: "PENDING"},
		EnumValue{Label: "Approved", Code: "APPROVED"},
		EnumValue{Label: "Rejected", Code: "REJECTED"},
		EnumValue{Label: "Live", Code: "LIVE"},
		EnumValue{Label: "Takedown", Code: "TAKEDOWN"},
	)
	DistributionStores = NewEnumCodec(
		EnumValue{Label: "Spotify", Code: "SPOTIFY"},
		EnumValue{Label: "Apple Music", Code: "APPLE_MUSIC"},
		EnumValue{Label: "YouTube Music", Code: "YOUTUBE_MUSIC"},
		EnumValue{Label: "Amazon Music", Code: "AMAZON_MUSIC"},
		EnumValue{Label: "Deezer", Code: "DEEZER"},
		EnumValue{Label: "TikTok", Code: "TIKTOK"},
		EnumValue{Label: "JioSaavn", Code: "JIOSAAVN"},
	)
	PayoutStatus = NewEnumCodec(
		EnumValue{Label: "Pending", Code: "pending"},
		EnumValue{Label: "Approved", Code: "approved"},
		EnumValue{Label: "Rejected", Code: "rejected"},
		EnumValue{Label: "Paid", Code: "paid"},
	)
	UserRole = NewEnumCodec(
		EnumValue{Label: "Artist", Code: "artist"},
		EnumValue{Label: "Label", Code: "label"},
		EnumValue{Label: "Admin", Code: "admin"},
	)
	ProductionStatus = NewEnumCodec(
		EnumValue{Label: "Requested", Code: "requested"},
		EnumValue{Label: "In Production", Code: "in_production"},
		EnumValue{Label: "Delivered", Code: "delivered"},
		EnumValue{Label: "Cancelled", Code: "cancelled"},
	)
	SyncPlatform = NewEnumCodec(
		EnumValue{Label: "Film", Code: "FILM"},
		EnumValue{Label: "Television", Code: "TV"},
		EnumValue{Label: "Advertising", Code: "ADS"},
		EnumValue{Label: "Games", Code: "GAMES"},
	)
)

var catalog = []Resource{
	{
		Name:    "tickets",
		Title:   "Support Tickets",
		Aliases: []string{"ticket", "support"},
		Path:    "/v1/admin/tickets",
		RowsKey: "tickets",
		Columns: []Column{
			{Title: "Subject", Field: "subject", Width: 36},
			{Title: "User", Field: "user.email", Width: 28},
			{Title: "Priority", Field: "priority"},
			{Title: "Status", Field: "status"},
			{Title: "Created", Field: "createdAt", Width: 20},
		},
		Filters: []Filter{
			{Name: "status", Values: TicketStatus.Codes()},
			{Name: "priority", Values: TicketPriority.Codes()},
		},
		UpdateMethod: http.MethodPatch,
		Fields: []Field{
			{Name: "subject", Label: "Subject", Required: true},
			{Name: "message", Label: "Message"},
			{Name: "status", Label: "Status", Codec: TicketStatus, Default: "Open"},
			{Name: "priority", Label: "Priority", Codec: TicketPriority, Default: "Medium"},
		},
	},
	{
		Name:    "releases",
		Title:   "Releases",
		Aliases: []string{"release"},
		Path:    "/v1/admin/releases",
		RowsKey: "releases",
		Columns: []Column{
			{Title: "Title", Field: "title", Width: 32},
			{Title: "Artist", Field: "artistName", Width: 24},
			{Title: "Label", Field: "labelName", Width: 20},
			{Title: "Status", Field: "status"},
			{Title: "Release Date", Field: "releaseDate"},
		},
		Filters: []Filter{
			{Name: "status", Values: ReleaseStatus.Codes()},
		},
		Fields: []Field{
			{Name: "title", Label: "Title", Required: true},
			{Name: "artist", APIName: "artistName", Label: "Artist", Required: true},
			{Name: "status", Label: "Status", Codec: ReleaseStatus, Default: "Pending"},
			{Name: "stores", APIName: "distributionStores", Label: "Stores", Kind: KindList, Codec: DistributionStores},
			{Name: "releaseDate", Label: "Release Date"},
		},
	},
	{
		Name:    "sublabels",
		Title:   "Sublabels",
		Aliases: []string{"sublabel", "labels"},
		Path:    "/v1/admin/sublabels",
		RowsKey: "sublabels",
		Columns: []Column{
			{Title: "Name", Field: "name", Width: 28},
			{Title: "Owner", Field: "ownerEmail", Width: 28},
			{Title: "Active", Field: "isActive"},
		},
		Toggles: []Toggle{{Field: "isActive"}},
		Fields: []Field{
			{Name: "name", Label: "Name", Required: true},
			{Name: "owner", APIName: "ownerEmail", Label: "Owner Email", Required: true},
			{Name: "isActive", Label: "Active", Kind: KindBool, Default: true},
		},
	},
	{
		Name:    "payout-requests",
		Title:   "Payout Requests",
		Aliases: []string{"payouts", "payout"},
		Path:    "/v1/admin/payout-requests",
		RowsKey: "payoutRequests",
		Columns: []Column{
			{Title: "User", Field: "user.email", Width: 28},
			{Title: "Amount", Field: "amount"},
			{Title: "Method", Field: "method"},
			{Title: "Status", Field: "status"},
			{Title: "Requested", Field: "createdAt", Width: 20},
		},
		Filters:      []Filter{{Name: "status", Values: PayoutStatus.Codes()}},
		UpdateMethod: http.MethodPatch,
		Fields: []Field{
			{Name: "status", Label: "Status", Required: true, Codec: PayoutStatus},
			{Name: "note", APIName: "adminNote", Label: "Admin Note"},
		},
	},
	{
		Name:    "merch-stores",
		Title:   "Merch Stores",
		Aliases: []string{"merch", "stores"},
		Path:    "/v1/merch-store/admin/stores",
		RowsKey: "stores",
		Columns: []Column{
			{Title: "Store", Field: "name", Width: 28},
			{Title: "Artist", Field: "artistName", Width: 24},
			{Title: "Products", Field: "productCount"},
			{Title: "Active", Field: "isActive"},
		},
		Toggles: []Toggle{{Field: "isActive"}},
		Fields: []Field{
			{Name: "name", Label: "Store Name", Required: true},
			{Name: "artist", APIName: "artistName", Label: "Artist", Required: true},
			{Name: "isActive", Label: "Active", Kind: KindBool, Default: false},
		},
	},
	{
		Name:    "royalty-months",
		Title:   "MCN Royalty Months",
		Aliases: []string{"months", "month", "mcn-months"},
		Path:    "/v1/mcn/admin/royalty-months",
		RowsKey: "months",
		Columns: []Column{
			{Title: "Month", Field: "month"},
			{Title: "Active", Field: "isActive"},
			{Title: "Channels", Field: "channelCount"},
			{Title: "Revenue", Field: "totalRevenue"},
		},
		Filters: []Filter{{Name: "isActive", Values: []string{"true", "false"}}},
		Toggles: []Toggle{{Field: "isActive", Suffix: "/toggle"}},
		Fields: []Field{
			{Name: "month", Label: "Month (MMM-YY)", Kind: KindMonth, Required: true},
			{Name: "isActive", Label: "Active", Kind: KindBool, Default: true},
		},
	},
	{
		Name:    "wallet-transactions",
		Title:   "Wallet Transactions",
		Aliases: []string{"wallet", "transactions"},
		Path:    "/v1/admin/wallet/transactions",
		RowsKey: "transactions",
		Columns: []Column{
			{Title: "User", Field: "user.email", Width: 28},
			{Title: "Type", Field: "type"},
			{Title: "Amount", Field: "amount"},
			{Title: "Status", Field: "status"},
			{Title: "Date", Field: "createdAt", Width: 20},
		},
		Filters: []Filter{
			{Name: "type", Values: []string{"credit", "debit"}},
			{Name: "status", Values: []string{"pending", "completed", "failed"}},
		},
		ReadOnly: true,
	},
	{
		Name:    "users",
		Title:   "Users",
		Aliases: []string{"user"},
		Path:    "/v1/admin/users",
		RowsKey: "users",
		Columns: []Column{
			{Title: "Name", Field: "name", Width: 24},
			{Title: "Email", Field: "email", Width: 30},
			{Title: "Role", Field: "role"},
			{Title: "Verified", Field: "isVerified"},
			{Title: "Blocked", Field: "isBlocked"},
		},
		Filters: []Filter{{Name: "role", Values: UserRole.Codes()}},
		Toggles: []Toggle{{Field: "isBlocked"}, {Field: "isVerified"}},
		Fields: []Field{
			{Name: "name", Label: "Name", Required: true},
			{Name: "email", Label: "Email", Required: true},
			{Name: "role", Label: "Role", Codec: UserRole, Default: "Artist"},
		},
	},
	{
		Name:    "trending-artists",
		Title:   "Trending Artists",
		Aliases: []string{"trending", "artists"},
		Path:    "/v1/trending-artists",
		RowsKey: "artists",
		Columns: []Column{
			{Title: "Rank", Field: "rank"},
			{Title: "Artist", Field: "name", Width: 28},
			{Title: "Genre", Field: "genre"},
			{Title: "Active", Field: "isActive"},
		},
		Toggles: []Toggle{{Field: "isActive"}},
		Fields: []Field{
			{Name: "name", Label: "Artist", Required: true},
			{Name: "genre", Label: "Genre"},
			{Name: "rank", Label: "Rank", Kind: KindInt, Required: true},
			{Name: "isActive", Label: "Active", Kind: KindBool, Default: true},
		},
	},
	{
		Name:    "mv-productions",
		Title:   "MV Production Requests",
		Aliases: []string{"mv", "mv-production", "productions"},
		Path:    "/v1/mv-production/admin",
		RowsKey: "productions",
		Columns: []Column{
			{Title: "Title", Field: "title", Width: 30},
			{Title: "Artist", Field: "artistName", Width: 24},
			{Title: "Budget", Field: "budget"},
			{Title: "Status", Field: "status"},
		},
		Filters:      []Filter{{Name: "status", Values: ProductionStatus.Codes()}},
		UpdateMethod: http.MethodPatch,
		Fields: []Field{
			{Name: "title", Label: "Title", Required: true},
			{Name: "artist", APIName: "artistName", Label: "Artist"},
			{Name: "budget", Label: "Budget", Kind: KindNumber},
			{Name: "status", Label: "Status", Codec: ProductionStatus, Default: "Requested"},
		},
	},
	{
		Name:    "sync-requests",
		Title:   "Sync Licensing",
		Aliases: []string{"sync"},
		Path:    "/v1/admin/sync",
		RowsKey: "syncRequests",
		Columns: []Column{
			{Title: "Track", Field: "trackTitle", Width: 30},
			{Title: "Platform", Field: "platform"},
			{Title: "Status", Field: "status"},
		},
		Filters: []Filter{
			{Name: "status", Values: []string{"pending", "approved", "rejected"}},
			{Name: "platform", Values: SyncPlatform.Codes()},
		},
		UpdateMethod: http.MethodPatch,
		Fields: []Field{
			{Name: "track", APIName: "trackTitle", Label: "Track", Required: true},
			{Name: "platform", Label: "Platform", Codec: SyncPlatform, Required: true},
		},
	},
	{
		Name:    "campaigns",
		Title:   "Marketing Campaigns",
		Aliases: []string{"marketing", "campaign"},
		Path:    "/v1/marketing/admin/campaigns",
		RowsKey: "campaigns",
		Columns: []Column{
			{Title: "Campaign", Field: "name", Width: 30},
			{Title: "Channel", Field: "channel"},
			{Title: "Budget", Field: "budget"},
			{Title: "Active", Field: "isActive"},
		},
		Toggles: []Toggle{{Field: "isActive"}},
		Fields: []Field{
			{Name: "name", Label: "Campaign", Required: true},
			{Name: "channel", Label: "Channel"},
			{Name: "budget", Label: "Budget", Kind: KindNumber},
			{Name: "isActive", Label: "Active", Kind: KindBool, Default: false},
		},
	},
	{
		Name:    "report-data",
		Title:   "Royalty Reports",
		Aliases: []string{"reports", "report"},
		Path:    "/v1/admin/reports",
		RowsKey: "reports",
		Columns: []Column{
			{Title: "Month", Field: "month"},
			{Title: "Platform", Field: "platform"},
			{Title: "Streams", Field: "streams"},
			{Title: "Revenue", Field: "revenue"},
		},
		Filters:  []Filter{{Name: "month"}, {Name: "platform"}},
		ReadOnly: true,
	},
}
