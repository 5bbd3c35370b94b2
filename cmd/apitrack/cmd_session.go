package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"strings"
)

func loginCmd(e *env, args []string) int {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	userFlag := fs.String("username", "", "Username (prompted when empty)")
	passFlag := fs.String("password", "", "Password (read from stdin when empty)")
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: apitrack login [--username u] [--password p]\n\n")
		fmt.Fprintf(e.stderr, "Log in to the backend at api_url and save the session.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	in := bufio.NewReader(e.stdin)
	user := strings.TrimSpace(*userFlag)
	if user == "" {
		user = prompt(e.stderr, in, "Username: ")
	}
	pass := *passFlag
	if pass == "" {
		pass = prompt(e.stderr, in, "Password: ")
	}
	if user == "" || pass == "" {
		fmt.Fprintln(e.stderr, "Error: username and password are required")
		return exitUsage
	}

	s, err := e.openSession(e.logger)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitFailed
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()
	if err := s.client.Login(ctx, user, pass); err != nil {
		return e.fail(err)
	}
	if err := s.store.SyncErr(); err != nil {
		fmt.Fprintf(e.stderr, "Error: logged in, but the session could not be saved: %v\n", err)
		return exitFailed
	}
	fmt.Fprintf(e.stderr, "Logged in to %s as %s.\n", e.cfg.APIURL, user)
	return exitOK
}

// prompt writes label and reads one line.
func prompt(w io.Writer, r *bufio.Reader, label string) string {
	fmt.Fprint(w, label)
	line, _ := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func logoutCmd(e *env, args []string) int {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	s, err := e.openSession(e.logger)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitFailed
	}
	defer s.Close()

	if !s.auth.LoggedIn() {
		fmt.Fprintln(e.stderr, "Not logged in.")
		return exitOK
	}
	s.client.Logout()
	if err := s.store.SyncErr(); err != nil {
		fmt.Fprintf(e.stderr, "Error: logged out for this run, but the saved session could not be removed: %v\n", err)
		return exitFailed
	}
	fmt.Fprintln(e.stderr, "Logged out.")
	return exitOK
}
