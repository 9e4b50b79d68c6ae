// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

package secret

// SecurityLevel describes what a container is allowed to do with its
// contents outside protected memory.
type SecurityLevel int

const (
	// LevelEphemeral marks material that must never leave memory.
	LevelEphemeral SecurityLevel = iota

	// LevelEncrypted marks material that is already ciphertext and may
	// be persisted.
	LevelEncrypted
)

// String implements fmt.Stringer.
func (l SecurityLevel) String() string {
	if l == LevelEncrypted {
		return "encrypted"
	}
	return "ephemeral"
}

// Persistable reports whether on-disk persistence is permitted.
func (l SecurityLevel) Persistable() bool {
	return l == LevelEncrypted
}

// Ephemeral is the type-level marker for LevelEphemeral.
type Ephemeral struct{}

// Encrypted is the type-level marker for LevelEncrypted.
type Encrypted struct{}

// Level is the closed set of security level markers. Being a type set
// of two local structs, no outside type can satisfy it.
type Level interface {
	Ephemeral | Encrypted
}

func levelOf[L Level]() SecurityLevel {
	var l L
	if _, ok := any(l).(Encrypted); ok {
		return LevelEncrypted
	}
	return LevelEphemeral
}
