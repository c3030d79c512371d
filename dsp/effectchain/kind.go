package effectchain

import (
	"fmt"
	"strings"
)

// Kind identifies one of the built-in effect types.
type Kind uint8

const (
	KindFilter Kind = iota + 1
	KindGate
	KindCompressor
	KindLimiter
	KindEcho
	KindReverb
	KindDeEsser
	KindPitch
	KindCharacter
	KindRobot
	KindMegaphone
	KindBroadcast
)

var kindNames = [...]string{
	KindFilter:     "filter",
	KindGate:       "gate",
	KindCompressor: "compressor",
	KindLimiter:    "limiter",
	KindEcho:       "echo",
	KindReverb:     "reverb",
	KindDeEsser:    "de-esser",
	KindPitch:      "pitch",
	KindCharacter:  "character",
	KindRobot:      "robot",
	KindMegaphone:  "megaphone",
	KindBroadcast:  "broadcast",
}

// String returns the lower-case name of k.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}

	return kindNames[k]
}

// Valid reports whether k is a defined kind.
func (k Kind) Valid() bool {
	return k >= KindFilter && k <= KindBroadcast
}

// Kinds returns every defined kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames)-1)
	for k := KindFilter; k <= KindBroadcast; k++ {
		out = append(out, k)
	}

	return out
}

// ParseKind maps a name such as "de-esser" or "DeEsser" to a Kind.
func ParseKind(name string) (Kind, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	for _, k := range Kinds() {
		if strings.ReplaceAll(kindNames[k], "-", "") == key {
			return k, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
}
