package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Confirm prompts the user with a yes/no question. Returns true for yes.
func Confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", StyleWarning.Render(prompt))
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// AuthorizePrompt asks the user to grant wallet access for an address.
// Wired as the local provider's Authorizer.
func AuthorizePrompt(address string) bool {
	return Confirm(fmt.Sprintf("Allow the widget to use wallet %s?", TruncateAddr(address)))
}
