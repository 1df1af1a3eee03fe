package engine

import "github.com/dcnet/causalstore/enginelog"

var log = enginelog.For("engine")
