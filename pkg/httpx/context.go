package httpx

type ctxKey string

const (
	// CtxKeyAccountID carries the authenticated account's ID.
	CtxKeyAccountID ctxKey = "account_id"
	// CtxKeyClaims carries the full parsed token claims.
	CtxKeyClaims ctxKey = "claims"
)
