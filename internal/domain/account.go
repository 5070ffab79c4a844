package domain

// AccountInfo describes a token account as far as the transaction reveals it.
type AccountInfo struct {
	Mint     string // token mint, empty when unknown
	Decimals *uint8 // mint decimals when known
	Owner    string // wallet that owns the token account
}

// AccountIndex maps account addresses to what is known about them.
// Entries are only ever added or enriched.
type AccountIndex map[string]AccountInfo

// Merge folds info into the entry for account. Non-empty incoming fields
// overwrite, empty ones keep whatever was already known.
func (idx AccountIndex) Merge(account string, info AccountInfo) {
	if account == "" {
		return
	}
	cur := idx[account]
	if info.Mint != "" {
		cur.Mint = info.Mint
	}
	if info.Decimals != nil {
		d := *info.Decimals
		cur.Decimals = &d
	}
	if info.Owner != "" {
		cur.Owner = info.Owner
	}
	idx[account] = cur
}

// UserAccounts maps every account known to belong to a user wallet onto that
// wallet. Wallets map onto themselves.
type UserAccounts map[string]string

// NewUserAccounts derives user ownership from the account index.
func NewUserAccounts(wallets []string, idx AccountIndex) UserAccounts {
	ua := make(UserAccounts, len(wallets))
	set := make(map[string]struct{}, len(wallets))
	for _, w := range wallets {
		set[w] = struct{}{}
		ua[w] = w
	}
	for account, info := range idx {
		if _, ok := set[info.Owner]; ok {
			if _, isWallet := set[account]; !isWallet {
				ua[account] = info.Owner
			}
		}
	}
	return ua
}

// OwnerOf returns the user wallet owning account.
func (ua UserAccounts) OwnerOf(account string) (string, bool) {
	w, ok := ua[account]
	return w, ok
}

// OwnedBy reports whether account belongs to wallet.
func (ua UserAccounts) OwnedBy(account, wallet string) bool {
	return account != "" && ua[account] == wallet
}

// IsUser reports whether account belongs to any user wallet.
func (ua UserAccounts) IsUser(account string) bool {
	_, ok := ua[account]
	return ok
}

// Internal reports whether e moves value between two accounts of wallet,
// such as wrapping SOL into the wallet's own wSOL account.
func (ua UserAccounts) Internal(e Edge, wallet string) bool {
	return ua.OwnedBy(e.Source, wallet) && ua.OwnedBy(e.Destination, wallet)
}

// Outflow reports whether e moves value out of wallet's accounts.
func (ua UserAccounts) Outflow(e Edge, wallet string) bool {
	if ua.Internal(e, wallet) {
		return false
	}
	return e.Authority == wallet || ua.OwnedBy(e.Source, wallet)
}

// Inflow reports whether e moves value into wallet's accounts.
func (ua UserAccounts) Inflow(e Edge, wallet string) bool {
	if ua.Internal(e, wallet) {
		return false
	}
	return ua.OwnedBy(e.Destination, wallet)
}
