package scryfall

import "github.com/mtgtools/arbitro-go/pkg/sources"

func init() {
	sources.Register(sources.KindPrice, "scryfall", New)
}
