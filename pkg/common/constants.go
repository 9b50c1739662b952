package common

const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"

	MoverDirectionGainers = "gainers"
	MoverDirectionLosers  = "losers"

	ListKindWatch = "watchlist"
	ListKindWarn  = "warninglist"
)
