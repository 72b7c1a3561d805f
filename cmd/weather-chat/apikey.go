package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// readAPIKey asks for the key on out. readSecret, when set, reads without
// echo; otherwise one line is taken from in.
func readAPIKey(in *bufio.Reader, out io.Writer, readSecret func() ([]byte, error)) (string, error) {
	_, _ = fmt.Fprint(out, "OpenAI API key: ")

	var key string
	if readSecret != nil {
		b, err := readSecret()
		_, _ = fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read API key: %w", err)
		}
		key = string(b)
	} else {
		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read API key: %w", err)
		}
		key = line
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("OPENAI_API_KEY is not set and no key was entered")
	}
	return key, nil
}
