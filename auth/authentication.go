// Package auth selects and runs one SSH authentication strategy against a
// connected but not yet authenticated session.
package auth

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Method names as advertised by SSH servers.
const (
	MethodPassword            = "password"
	MethodPublicKey           = "publickey"
	MethodKeyboardInteractive = "keyboard-interactive"
)

// ErrNoType is returned when no authentication type is given.
var ErrNoType = errors.New("no authentication type")

// ErrInteractiveNotSupported is returned when the Interactive type is used.
var ErrInteractiveNotSupported = errors.New("interactive authentication is not supported")

// Session is a transport-connected SSH session that can run the
// authentication exchanges. The authenticated flag belongs to the session.
type Session interface {
	Authenticated() bool
	// AuthMethods returns the methods the server accepts for username.
	AuthMethods(username string) ([]string, error)
	UserauthAgent(username string) error
	UserauthPubkeyFile(username, privateKeyPath, passphrase string) error
	UserauthPubkeyMemory(username, privateKey, passphrase string) error
	UserauthPassword(username, password string) error
}

// AuthenticationError reports a session that is still unauthenticated after
// the exchange. Offered is set when the password was not submitted because
// the server did not offer the password method.
type AuthenticationError struct {
	Username string
	Offered  []string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("Could not authenticate user: %s.", e.Username)
}

// PasswordNotOffered tells whether the failure comes from a skipped password
// submission.
func (e *AuthenticationError) PasswordNotOffered() bool {
	return e.Offered != nil
}

// Authenticate runs the exchange matching typ, then checks that the session
// is authenticated. Errors from the session are returned as is.
func Authenticate(s Session, username string, typ Type, l *zap.SugaredLogger) error {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	if s.Authenticated() {
		l.Debugw("session already authenticated", "user", username)
		return nil
	}
	if typ == nil {
		return ErrNoType
	}
	l.Debugw("authenticating", "user", username, "method", typ.String())

	var offered []string
	switch t := typ.(type) {
	case Interactive:
		return ErrInteractiveNotSupported
	case Agent:
		if err := s.UserauthAgent(username); err != nil {
			return err
		}
	case KeyFile:
		if err := s.UserauthPubkeyFile(username, t.Path, t.Passphrase); err != nil {
			return err
		}
	case KeyMemory:
		if err := s.UserauthPubkeyMemory(username, t.PrivateKey, t.Passphrase); err != nil {
			return err
		}
	case Password:
		methods, err := s.AuthMethods(username)
		if err != nil {
			return err
		}
		if NewMethodSet(methods...).Has(MethodPassword) {
			if err := s.UserauthPassword(username, t.Secret); err != nil {
				return err
			}
		} else {
			l.Warnw("password authentication not offered by server", "user", username, "methods", methods)
			offered = methods
			if offered == nil {
				offered = []string{}
			}
		}
	default:
		return fmt.Errorf("unknown authentication type: %T", typ)
	}

	if !s.Authenticated() {
		return &AuthenticationError{Username: username, Offered: offered}
	}
	l.Infow("authenticated", "user", username, "method", typ.String())
	return nil
}
