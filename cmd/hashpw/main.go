// Command hashpw prints the bcrypt hash of a console password for use in
// ADMIN_PASSWORD_HASH or POLICE_PASSWORD_HASH.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kumbhsaathi/kumbhsaathi/internal/utils"
)

func main() {
	var pw string
	if len(os.Args) > 1 {
		pw = os.Args[1]
	} else {
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		pw = strings.TrimRight(line, "\r\n")
	}
	if pw == "" {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>  (or pipe it on stdin)")
		os.Exit(2)
	}
	hash, err := utils.HashPassword(pw, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
