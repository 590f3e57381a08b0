package cardmarket

import "github.com/mtgtools/arbitro-go/pkg/sources"

func init() {
	sources.Register(sources.KindListing, "cardmarket", New)
}
