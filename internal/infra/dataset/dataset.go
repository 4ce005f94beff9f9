// Package dataset provides the fixed sample accounts and the common-password
// wordlist the demo starts from.
package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/arklim/account-guard/internal/core/domain"
)

// SeedAccounts returns a fresh copy of the sample users.
func SeedAccounts() domain.SeedAccounts {
	return domain.SeedAccounts{
		{
			ID:                   "1",
			FirstName:            "Jane",
			LastName:             "Doe",
			History:              []string{"R#2p$L@9x!", "Sunshine4@", "BlueSky12#"},
			ExpirationMonthsLeft: 0,
			CurrentPassword:      "JaneDoe@2024!",
			Status:               domain.AccountStatusActive,
		},
		{
			ID:                   "2",
			FirstName:            "John",
			LastName:             "Smith",
			History:              []string{"P@ssw0rd!", "Grapes&Apples#", "Security123"},
			ExpirationMonthsLeft: 2,
			CurrentPassword:      "Smith#Secure123",
			Status:               domain.AccountStatusActive,
		},
		{
			ID:                   "3",
			FirstName:            "Alice",
			LastName:             "Johnson",
			History:              []string{"PurpleSun$et", "Mountain@Top67", "OceanWaves!"},
			ExpirationMonthsLeft: 5,
			CurrentPassword:      "Alic3@Wav3s!2024",
			Status:               domain.AccountStatusActive,
		},
	}
}

// CommonPasswords returns the built-in reference wordlist.
func CommonPasswords() domain.ReferenceWordlist {
	return domain.ReferenceWordlist{
		"password", "123456", "qwerty", "admin", "letmein",
		"welcome", "1234", "12345", "abc123", "123abc",
		"password1", "password123", "123qwe", "qwerty123",
		"iloveyou", "sunshine", "123321", "qwertyuiop", "admin123",
		"password!", "123!abc", "passw0rd", "secret", "football",
		"qwerty12345", "123!@#qwe", "test123", "123qwe!@#",
		"trustno1", "hello123", "monkey", "superman", "letmein123",
		"123!@#qweQAZ", "asdfgh", "123abc!", "welcome123", "pass123",
		"qazwsx", "letmein!", "1q2w3e", "1234abcd", "abc123!",
		"password12", "pass1234", "adminadmin", "12345qwert", "qwert12345",
		"abcdef", "password1234", "password12345", "admin1234", "password!",
	}
}

// LoadWordlist reads a newline-separated wordlist. Blank lines and lines
// starting with '#' are skipped. An empty path yields CommonPasswords.
func LoadWordlist(path string) (domain.ReferenceWordlist, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return CommonPasswords(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wordlist: %w", err)
	}
	defer f.Close()

	var words domain.ReferenceWordlist
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read wordlist: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("wordlist %s is empty", path)
	}

	return words, nil
}
