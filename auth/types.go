package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/scylladb/go-set/strset"
)

// Type is one of Interactive, Agent, KeyFile, KeyMemory or Password.
type Type interface {
	String() string
	isType()
}

// Interactive is keyboard-interactive authentication. It is not implemented.
type Interactive struct{}

// Agent authenticates with the keys of the running SSH agent.
type Agent struct{}

// KeyFile authenticates with a private key read from Path.
type KeyFile struct {
	Path       string
	Passphrase string
}

// KeyMemory authenticates with a PEM or OpenSSH encoded private key.
type KeyMemory struct {
	PrivateKey string
	Passphrase string
}

// Password authenticates with a password.
type Password struct {
	Secret string
}

func (Interactive) isType() {}
func (Agent) isType()       {}
func (KeyFile) isType()     {}
func (KeyMemory) isType()   {}
func (Password) isType()    {}

func (Interactive) String() string { return "interactive" }
func (Agent) String() string       { return "agent" }
func (k KeyFile) String() string   { return "keyfile:" + k.Path }
func (KeyMemory) String() string   { return "keymemory" }
func (Password) String() string    { return "password" }

// MethodSet is the set of authentication methods a server accepts.
type MethodSet struct {
	*strset.Set
}

// NewMethodSet builds a set from method names, ignoring blanks.
func NewMethodSet(methods ...string) MethodSet {
	s := strset.New()
	for _, m := range methods {
		m = strings.TrimSpace(m)
		if m != "" {
			s.Add(m)
		}
	}
	return MethodSet{Set: s}
}

// ParseMethodList parses a comma separated method list such as
// "publickey,password".
func ParseMethodList(list string) MethodSet {
	return NewMethodSet(strings.Split(list, ",")...)
}

// Sorted returns the methods in lexical order.
func (m MethodSet) Sorted() []string {
	l := m.List()
	sort.Strings(l)
	return l
}

// Names accepted by ParseType.
const (
	TypeInteractive = "interactive"
	TypeAgent       = "agent"
	TypeKeyFile     = "keyfile"
	TypeKeyMemory   = "keymemory"
	TypePassword    = "password"
)

// ParseType builds a Type from its name. value is the key path for keyfile,
// the key material for keymemory and the secret for password.
func ParseType(name, value string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case TypeInteractive:
		return Interactive{}, nil
	case TypeAgent:
		return Agent{}, nil
	case TypeKeyFile:
		if value == "" {
			return nil, errors.New("empty private key path")
		}
		return KeyFile{Path: value}, nil
	case TypeKeyMemory:
		if value == "" {
			return nil, errors.New("empty private key")
		}
		return KeyMemory{PrivateKey: value}, nil
	case TypePassword:
		return Password{Secret: value}, nil
	default:
		return nil, fmt.Errorf("unknown authentication type: %s", name)
	}
}
