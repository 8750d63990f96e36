// Command sign produces admin signatures for the Ed25519 challenge auth.
//
// With -server it fetches the current challenge, signs it and checks the
// signature against /auth/verify. Without it, challenges are read from stdin.
package main

import (
	"bufio"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/debemdeboas/sorteio-admin/internal/routes"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	outputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func loadPrivateKey(filename string) (ed25519.PrivateKey, error) {
	privKeyBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(privKeyBytes)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}
	privKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	edPriv, ok := privKey.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("not an Ed25519 private key")
	}
	return edPriv, nil
}

func signChallenge(key ed25519.PrivateKey, challengeB64 string) (string, error) {
	challenge, err := base64.StdEncoding.DecodeString(challengeB64)
	if err != nil {
		return "", fmt.Errorf("invalid base64: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ed25519.Sign(key, challenge)), nil
}

// login signs the server's current challenge and verifies it, returning the
// signature to use as the Authorization header.
func login(client *http.Client, server string, key ed25519.PrivateKey) (string, error) {
	server = strings.TrimRight(server, "/")

	resp, err := client.Get(server + routes.AuthChallenge)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("challenge request failed: %s", resp.Status)
	}

	var body struct {
		Challenge string `json:"challenge"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("error decoding challenge: %w", err)
	}

	sig, err := signChallenge(key, body.Challenge)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, server+routes.AuthVerify, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", sig)

	verify, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer verify.Body.Close()
	if verify.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(verify.Body, 512))
		return "", fmt.Errorf("verification failed: %s %s", verify.Status, strings.TrimSpace(string(msg)))
	}
	return sig, nil
}

func interactive(in io.Reader, out io.Writer, key ed25519.PrivateKey) error {
	fmt.Fprintln(out, "Enter challenges one by one. Type 'quit' to exit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, promptStyle.Render("Enter challenge (base64): "))
		if !scanner.Scan() {
			break
		}

		challenge := strings.TrimSpace(scanner.Text())
		if challenge == "" {
			continue
		}
		if challenge == "quit" {
			break
		}

		sig, err := signChallenge(key, challenge)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("Error: "+err.Error()))
			continue
		}
		fmt.Fprintln(out, outputStyle.Render("Signature: "+sig))
	}
	return scanner.Err()
}

func main() {
	keyPath := flag.String("key", "privkey.pem", "PKCS#8 PEM Ed25519 private key")
	server := flag.String("server", "", "Admin server base URL, e.g. http://localhost:12600")
	flag.Parse()

	key, err := loadPrivateKey(*keyPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error loading private key: "+err.Error()))
		os.Exit(1)
	}

	if *server != "" {
		sig, err := login(&http.Client{Timeout: 10 * time.Second}, *server, key)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
			os.Exit(1)
		}
		fmt.Println(outputStyle.Render("Authorization: " + sig))
		return
	}

	if err := interactive(os.Stdin, os.Stdout, key); err != nil {
		fmt.Fprintln(os.Stderr, "Error reading input:", err)
		os.Exit(1)
	}
}
