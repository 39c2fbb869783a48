// Package prompt reads credentials and one-time codes from the terminal.
package prompt

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// stdin is shared so buffered input survives across prompts.
var stdin = bufio.NewReader(os.Stdin)

// Line prints a label and reads one line of input.
func Line(label string) (string, error) {
	fmt.Print(label)
	line, err := stdin.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Password prints a label and reads a line without echoing it.
func Password(label string) (string, error) {
	fmt.Print(label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

// Credentials prompts for the Wealthsimple email and password.
func Credentials() (username, password string, err error) {
	username, err = Line("Email: ")
	if err != nil {
		return "", "", err
	}
	password, err = Password("Password: ")
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

// OTPCode prompts for a one-time 2FA code. Matches the
// wealthsimple.OTPPrompter signature.
func OTPCode() (string, error) {
	return Line("2FA code: ")
}
