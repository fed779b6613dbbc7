package repository

import "github.com/iliyamo/stylehub/internal/model"

// Index names shared across tables.
const (
	ByExternalID     = "by_external_id"
	ByTenant         = "by_tenant"
	BySlug           = "by_slug"
	ByActive         = "by_active"
	ByUser           = "by_user"
	ByUserStyle      = "by_user_style"
	ByStyle          = "by_style"
	ByNumber         = "by_number"
	ByCustomer       = "by_customer"
	ByCustomerTenant = "by_customer_tenant"
	ByOrder          = "by_order"
	ByWorker         = "by_worker"
	ByManager        = "by_manager"
	ByTransactionRef = "by_transaction_ref"
	ByToken          = "by_token"
	ByParticipantKey = "by_participant_key"
	ByParticipantA   = "by_participant_a"
	ByParticipantB   = "by_participant_b"
	ByConversation   = "by_conversation"
	ByReceiver       = "by_receiver"
	ByPublic         = "by_public"
	ByActorKey       = "by_actor_key"
)

func idx[T any](name string, unique bool, key func(T) []any, cols ...string) Index[T] {
	return Index[T]{Name: name, Columns: cols, Unique: unique, Key: key}
}

var accountSchema = Schema[model.Account]{
	Table: "accounts",
	ID:    func(v model.Account) string { return v.ID },
	Indexes: []Index[model.Account]{
		idx(ByExternalID, true, func(v model.Account) []any { return []any{v.ExternalID} }, "external_id"),
		idx(ByTenant, false, func(v model.Account) []any { return []any{v.TenantID} }, "tenant_id"),
	},
}

var tenantSchema = Schema[model.Tenant]{
	Table: "tenants",
	ID:    func(v model.Tenant) string { return v.ID },
	Indexes: []Index[model.Tenant]{
		idx(BySlug, true, func(v model.Tenant) []any { return []any{v.Slug} }, "slug"),
		idx(ByActive, false, func(v model.Tenant) []any { return []any{v.IsActive} }, "is_active"),
	},
}

var customerLinkSchema = Schema[model.CustomerLink]{
	Table: "customer_links",
	ID:    func(v model.CustomerLink) string { return v.ID },
	Indexes: []Index[model.CustomerLink]{
		idx(ByCustomerTenant, true, func(v model.CustomerLink) []any { return []any{v.CustomerID, v.TenantID} }, "customer_id", "tenant_id"),
		idx(ByTenant, false, func(v model.CustomerLink) []any { return []any{v.TenantID} }, "tenant_id"),
	},
}

var styleSchema = Schema[model.Style]{
	Table: "styles",
	ID:    func(v model.Style) string { return v.ID },
	Indexes: []Index[model.Style]{
		idx(ByTenant, false, func(v model.Style) []any { return []any{v.TenantID} }, "tenant_id"),
		idx(ByActive, false, func(v model.Style) []any { return []any{v.IsActive} }, "is_active"),
	},
}

var savedStyleSchema = Schema[model.SavedStyle]{
	Table: "saved_styles",
	ID:    func(v model.SavedStyle) string { return v.ID },
	Indexes: []Index[model.SavedStyle]{
		idx(ByUser, false, func(v model.SavedStyle) []any { return []any{v.UserID} }, "user_id"),
		idx(ByUserStyle, true, func(v model.SavedStyle) []any { return []any{v.UserID, v.StyleID} }, "user_id", "style_id"),
		idx(ByStyle, false, func(v model.SavedStyle) []any { return []any{v.StyleID} }, "style_id"),
	},
}

var orderSchema = Schema[model.Order]{
	Table: "orders",
	ID:    func(v model.Order) string { return v.ID },
	Indexes: []Index[model.Order]{
		idx(ByNumber, true, func(v model.Order) []any { return []any{v.OrderNumber} }, "order_number"),
		idx(ByCustomer, false, func(v model.Order) []any { return []any{v.CustomerID} }, "customer_id"),
		idx(ByTenant, false, func(v model.Order) []any { return []any{v.TenantID} }, "tenant_id"),
	},
}

var assignmentSchema = Schema[model.Assignment]{
	Table: "assignments",
	ID:    func(v model.Assignment) string { return v.ID },
	Indexes: []Index[model.Assignment]{
		idx(ByOrder, false, func(v model.Assignment) []any { return []any{v.OrderID} }, "order_id"),
		idx(ByWorker, false, func(v model.Assignment) []any { return []any{v.WorkerID} }, "worker_id"),
		idx(ByManager, false, func(v model.Assignment) []any { return []any{v.AssignedBy} }, "assigned_by"),
	},
}

var paymentSchema = Schema[model.Payment]{
	Table: "payments",
	ID:    func(v model.Payment) string { return v.ID },
	Indexes: []Index[model.Payment]{
		idx(ByTransactionRef, true, func(v model.Payment) []any { return []any{v.TransactionRef} }, "transaction_ref"),
		idx(ByOrder, false, func(v model.Payment) []any { return []any{v.OrderID} }, "order_id"),
	},
}

var invitationSchema = Schema[model.Invitation]{
	Table: "invitations",
	ID:    func(v model.Invitation) string { return v.ID },
	Indexes: []Index[model.Invitation]{
		idx(ByToken, true, func(v model.Invitation) []any { return []any{v.TokenHash} }, "token_hash"),
		idx(ByTenant, false, func(v model.Invitation) []any { return []any{v.TenantID} }, "tenant_id"),
	},
}

var conversationSchema = Schema[model.Conversation]{
	Table: "conversations",
	ID:    func(v model.Conversation) string { return v.ID },
	Indexes: []Index[model.Conversation]{
		idx(ByParticipantKey, true, func(v model.Conversation) []any { return []any{v.ParticipantKey} }, "participant_key"),
		idx(ByParticipantA, false, func(v model.Conversation) []any { return []any{v.Participants[0]} }, "participant_a"),
		idx(ByParticipantB, false, func(v model.Conversation) []any { return []any{v.Participants[1]} }, "participant_b"),
	},
}

var messageSchema = Schema[model.Message]{
	Table: "messages",
	ID:    func(v model.Message) string { return v.ID },
	Indexes: []Index[model.Message]{
		idx(ByConversation, false, func(v model.Message) []any { return []any{v.ConversationID} }, "conversation_id"),
		idx(ByOrder, false, func(v model.Message) []any { return []any{v.OrderID} }, "order_id"),
		idx(ByReceiver, false, func(v model.Message) []any { return []any{v.ReceiverID} }, "receiver_id"),
	},
}

var notificationSchema = Schema[model.Notification]{
	Table: "notifications",
	ID:    func(v model.Notification) string { return v.ID },
	Indexes: []Index[model.Notification]{
		idx(ByUser, false, func(v model.Notification) []any { return []any{v.UserID} }, "user_id"),
	},
}

var huddleSchema = Schema[model.Huddle]{
	Table: "huddles",
	ID:    func(v model.Huddle) string { return v.ID },
	Indexes: []Index[model.Huddle]{
		idx(ByOrder, false, func(v model.Huddle) []any { return []any{v.OrderID} }, "order_id"),
		idx(ByTenant, false, func(v model.Huddle) []any { return []any{v.TenantID} }, "tenant_id"),
	},
}

var reviewSchema = Schema[model.Review]{
	Table: "reviews",
	ID:    func(v model.Review) string { return v.ID },
	Indexes: []Index[model.Review]{
		idx(ByOrder, true, func(v model.Review) []any { return []any{v.OrderID} }, "order_id"),
		idx(ByTenant, false, func(v model.Review) []any { return []any{v.TenantID} }, "tenant_id"),
		idx(ByStyle, false, func(v model.Review) []any { return []any{v.StyleID} }, "style_id"),
	},
}

var portfolioSchema = Schema[model.PortfolioItem]{
	Table: "portfolio_items",
	ID:    func(v model.PortfolioItem) string { return v.ID },
	Indexes: []Index[model.PortfolioItem]{
		idx(ByWorker, false, func(v model.PortfolioItem) []any { return []any{v.WorkerID} }, "worker_id"),
		idx(ByPublic, false, func(v model.PortfolioItem) []any { return []any{v.IsPublic} }, "is_public"),
	},
}

var counterSchema = Schema[model.RateLimitCounter]{
	Table: "rate_limit_counters",
	ID:    func(v model.RateLimitCounter) string { return v.ID },
	Indexes: []Index[model.RateLimitCounter]{
		idx(ByActorKey, true, func(v model.RateLimitCounter) []any { return []any{v.ActorID, v.Key} }, "actor_id", "key_name"),
	},
}

var auditSchema = Schema[model.AuditEntry]{
	Table: "audit_entries",
	ID:    func(v model.AuditEntry) string { return v.ID },
	Indexes: []Index[model.AuditEntry]{
		idx(ByTenant, false, func(v model.AuditEntry) []any { return []any{v.TenantID} }, "tenant_id"),
	},
}

func Accounts(tx Tx) Table[model.Account] { return Bind(tx, accountSchema) }
func Tenants(tx Tx) Table[model.Tenant] { return Bind(tx, tenantSchema) }
func CustomerLinks(tx Tx) Table[model.CustomerLink] { return Bind(tx, customerLinkSchema) }
func Styles(tx Tx) Table[model.Style] { return Bind(tx, styleSchema) }
func SavedStyles(tx Tx) Table[model.SavedStyle] { return Bind(tx, savedStyleSchema) }
func Orders(tx Tx) Table[model.Order] { return Bind(tx, orderSchema) }
func Assignments(tx Tx) Table[model.Assignment] { return Bind(tx, assignmentSchema) }
func Payments(tx Tx) Table[model.Payment] { return Bind(tx, paymentSchema) }
func Invitations(tx Tx) Table[model.Invitation] { return Bind(tx, invitationSchema) }
func Conversations(tx Tx) Table[model.Conversation] { return Bind(tx, conversationSchema) }
func Messages(tx Tx) Table[model.Message] { return Bind(tx, messageSchema) }
func Notifications(tx Tx) Table[model.Notification] { return Bind(tx, notificationSchema) }
func Huddles(tx Tx) Table[model.Huddle] { return Bind(tx, huddleSchema) }
func Reviews(tx Tx) Table[model.Review] { return Bind(tx, reviewSchema) }
func Portfolio(tx Tx) Table[model.PortfolioItem] { return Bind(tx, portfolioSchema) }
func RateLimitCounters(tx Tx) Table[model.RateLimitCounter] { return Bind(tx, counterSchema) }
func AuditEntries(tx Tx) Table[model.AuditEntry] { return Bind(tx, auditSchema) }
