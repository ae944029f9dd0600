package crypto

import (
	"errors"
	"fmt"
	"io/ioutil"
	"runtime"
	"strings"

	"github.com/awnumar/memguard"
	"github.com/gdamore/tcell"
	"github.com/mitchellh/go-homedir"
	"github.com/peterh/liner"
	"github.com/rivo/tview"
	"golang.org/x/crypto/ssh"
)

// NeedPassphrase checks if the given private key needs a passphrase to be decoded.
func NeedPassphrase(privkey []byte) (bool, error) {
	_, err := ssh.ParseRawPrivateKey(privkey)
	if err == nil {
		return false, nil
	}
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) {
		return true, nil
	}
	return false, err
}

// KeyFileNeedsPassphrase reads the private key at path and checks whether it
// is encrypted.
func KeyFileNeedsPassphrase(path string) (bool, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return false, err
	}
	privkeyb, err := ioutil.ReadFile(p)
	if err != nil {
		return false, fmt.Errorf("failed to read private key file: %s", err)
	}
	defer memguard.WipeBytes(privkeyb)
	if len(privkeyb) == 0 {
		return false, errors.New("empty private key")
	}
	needPass, err := NeedPassphrase(privkeyb)
	if err != nil {
		return false, fmt.Errorf("error parsing private key: %s", err)
	}
	return needPass, nil
}

// Prompter asks the user for a secret.
type Prompter func(prompt string) (string, error)

// TerminalPrompter asks for secrets with InputPassword.
func TerminalPrompter(prompt string) (string, error) {
	buf, err := InputPassword(prompt)
	if err != nil {
		return "", err
	}
	defer buf.Destroy()
	return string(buf.Buffer()), nil
}

// LinePrompter asks for secrets on the current terminal line.
func LinePrompter(prompt string) (string, error) {
	line := liner.NewLiner()
	defer func() { _ = line.Close() }()
	pass, err := line.PasswordPrompt(prompt + ": ")
	if err != nil {
		return "", err
	}
	if len(pass) == 0 {
		return "", errors.New("empty password")
	}
	return pass, nil
}

// GetPrompter returns the prompter called name: "form" (the default) or "line".
func GetPrompter(name string) (Prompter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "form":
		return TerminalPrompter, nil
	case "line":
		return LinePrompter, nil
	default:
		return nil, fmt.Errorf("unknown prompt style: %s", name)
	}
}

func InputPassword(prompt string) (*memguard.LockedBuffer, error) {
	defer runtime.GC()
	app := tview.NewApplication()

	field := tview.NewInputField()
	field.SetLabel("Password:").SetText("").SetFieldWidth(0).SetMaskCharacter('*')
	field.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			field.SetText("")
		}
		app.Stop()
	})

	form := tview.NewForm()
	form.SetFieldBackgroundColor(tview.Styles.PrimitiveBackgroundColor)
	form.SetFieldTextColor(tcell.ColorRed)
	form.SetBorder(true).SetTitle(" " + prompt + " ").SetTitleAlign(tview.AlignLeft)
	form.AddFormItem(field)
	err := app.SetRoot(form, true).Run()
	if err != nil {
		return nil, err
	}
	pass := field.GetText()

	if len(pass) == 0 {
		return nil, errors.New("empty password")
	}
	b, err := memguard.NewImmutableFromBytes([]byte(pass))
	if err != nil {
		return nil, err
	}
	return b, nil
}
