package edhrec

import "github.com/mtgtools/arbitro-go/pkg/sources"

func init() {
	sources.Register(sources.KindCards, "edhrec", New)
}
