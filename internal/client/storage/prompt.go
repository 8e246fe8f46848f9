package storage

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/LearnLingo/internal/models"
)

// Prompter reads interactive input line by line.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPrompter reads from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// Line prints label and returns the trimmed next line. It returns io.EOF
// when the input is exhausted.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// Credentials is the register/login form.
type Credentials struct {
	Name     string
	Email    string
	Password string
}

// PromptCredentials reads the login form, or the registration form when withName is set.
func (p *Prompter) PromptCredentials(withName bool) (Credentials, error) {
	var c Credentials
	var err error
	if withName {
		if c.Name, err = p.Line("Name: "); err != nil {
			return c, err
		}
	}
	if c.Email, err = p.Line("Email: "); err != nil {
		return c, err
	}
	if c.Password, err = p.Line("Password: "); err != nil {
		return c, err
	}
	return c, nil
}

// PromptBooking reads the trial lesson form for t. An empty reason answer
// picks the first reason.
func (p *Prompter) PromptBooking(t models.Tutor) (models.TrialBooking, error) {
	fmt.Fprintf(p.out, "Book trial lesson with %s\n", t.FullName())
	fmt.Fprintln(p.out, "What is your main reason for learning English?")
	for i, r := range models.BookingReasons {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, r.Label)
	}

	var b models.TrialBooking
	answer, err := p.Line(fmt.Sprintf("Reason [1-%d]: ", len(models.BookingReasons)))
	if err != nil {
		return b, err
	}
	b.Reason = parseReason(answer)

	if b.FullName, err = p.Line("Full Name: "); err != nil {
		return b, err
	}
	if b.Email, err = p.Line("Email: "); err != nil {
		return b, err
	}
	if b.Phone, err = p.Line("Phone number: "); err != nil {
		return b, err
	}
	return b, nil
}

// parseReason accepts a list number or a reason value. Anything else is
// returned as-is so that the server rejects it.
func parseReason(answer string) models.BookingReason {
	if answer == "" {
		return models.BookingReasons[0].Value
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(models.BookingReasons) {
			return models.BookingReasons[n-1].Value
		}
		return models.BookingReason(answer)
	}
	return models.BookingReason(strings.ToLower(answer))
}
