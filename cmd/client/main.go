// Package main is the LearnLingo interactive shell: it browses the tutor
// catalogue page by page, filters it, keeps favorites in sync and books
// trial lessons.
package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/LearnLingo/internal/client/favorites"
	"github.com/atinyakov/LearnLingo/internal/client/filter"
	"github.com/atinyakov/LearnLingo/internal/client/gateway"
	"github.com/atinyakov/LearnLingo/internal/client/paging"
	"github.com/atinyakov/LearnLingo/internal/client/storage"
	"github.com/atinyakov/LearnLingo/internal/logger"
	"github.com/atinyakov/LearnLingo/internal/models"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

const helpText = `Available commands:
  register                         create an account
  login                            sign in
  logout                           sign out
  whoami                           show the signed-in user
  list                             show loaded teachers with the current filter
  more                             load the next page
  filter language|level|price <v>  narrow the list ("All" clears one filter)
  reset                            clear all filters
  options                          show the filter choices for loaded teachers
  fav <id>                         add or remove a favorite
  favorites                        show favorite teachers
  book <id>                        book a trial lesson
  exit`

// shell wires the core components to the terminal.
type shell struct {
	out      io.Writer
	prompt   *storage.Prompter
	pageSize int

	identity *gateway.HTTPIdentity
	store    *gateway.HTTPStore
	list     *paging.Controller
	filters  *filter.Engine
	favs     *favorites.Synchronizer
	loader   *paging.Loader
}

func (s *shell) printf(format string, a ...any) { fmt.Fprintf(s.out, format, a...) }

// repl runs the interactive loop until exit or end of input.
func (s *shell) repl(ctx context.Context) {
	for {
		line, err := s.prompt.Line("learnlingo> ")
		if err != nil {
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			s.printf("%s\n", helpText)
		case "register":
			s.authenticate(ctx, true)
		case "login":
			s.authenticate(ctx, false)
		case "logout":
			if err := s.identity.Logout(ctx); err != nil {
				s.printf("Logout failed: %v\n", err)
			}
			s.printf("Signed out\n")
		case "whoami":
			if id := s.favs.Identity(); id != nil {
				s.printf("%s <%s>\n", cmp.Or(id.Name, "-"), id.Email)
			} else {
				s.printf("Not signed in\n")
			}
		case "list":
			s.show()
		case "more":
			s.list.LoadNextPage(ctx, s.pageSize)
			s.show()
		case "filter":
			if len(args) < 3 {
				s.printf("Usage: filter language|level|price <value>\n")
				continue
			}
			value := strings.Join(args[2:], " ")
			switch args[1] {
			case "language":
				s.filters.SetLanguage(value)
			case "level":
				s.filters.SetLevel(value)
			case "price":
				s.filters.SetPrice(value)
			default:
				s.printf("Unknown filter %q\n", args[1])
				continue
			}
			s.show()
		case "reset":
			s.filters.Reset()
			s.show()
		case "options":
			opts := filter.Options(s.list.Snapshot().Items)
			s.printf("Languages: %s\n", strings.Join(opts.Languages, ", "))
			s.printf("Levels:    %s\n", strings.Join(opts.Levels, ", "))
			s.printf("Prices:    %s\n", strings.Join(opts.Prices, ", "))
		case "fav":
			if len(args) < 2 {
				s.printf("Usage: fav <id>\n")
				continue
			}
			s.toggle(ctx, args[1])
		case "favorites":
			s.showFavorites(ctx)
		case "book":
			if len(args) < 2 {
				s.printf("Usage: book <id>\n")
				continue
			}
			s.book(ctx, args[1])
		case "exit":
			s.printf("Bye\n")
			return
		default:
			s.printf("Unknown command. Type 'help' for a list of commands.\n")
		}
	}
}

func (s *shell) authenticate(ctx context.Context, register bool) {
	c, err := s.prompt.PromptCredentials(register)
	if err != nil {
		return
	}
	var id models.Identity
	if register {
		id, err = s.identity.Register(ctx, c.Name, c.Email, c.Password)
	} else {
		id, err = s.identity.Login(ctx, c.Email, c.Password)
	}
	if err != nil {
		s.printf("%s\n", gateway.AuthErrorMessage(err))
		return
	}
	s.printf("Welcome, %s\n", cmp.Or(id.Name, id.Email))
}

// show prints the filtered list and whether more can be loaded.
func (s *shell) show() {
	st := s.list.Snapshot()
	if st.Err != nil {
		s.printf("Failed to load teachers: %v\n", st.Err)
	}
	sel := s.filters.Selection()
	visible := filter.Apply(st.Items, sel)
	if len(visible) == 0 {
		if sel.Active() && st.HasMore {
			s.printf("No teachers found yet. Try Load more.\n")
		} else {
			s.printf("No teachers found.\n")
		}
	}
	for _, t := range visible {
		s.printTutor(t)
	}
	if filter.ShowLoadMore(st.HasMore, sel, len(visible), s.pageSize) {
		s.printf("Type 'more' to load more.\n")
	}
}

func (s *shell) printTutor(t models.Tutor) {
	mark := " "
	if s.favs.IsFavorite(t.ID) {
		mark = "*"
	}
	s.printf("%s %s  %-24s %s  %s  %s  rating %.1f\n", mark, t.ID, t.FullName(),
		strings.Join(t.Languages, "/"), strings.Join(t.Levels, "/"),
		filter.FormatPrice(t.PricePerHour), t.Rating)
}

func (s *shell) toggle(ctx context.Context, id string) {
	if s.favs.State() == favorites.Unauthenticated {
		s.printf("This feature is available only for authorized users.\n")
		return
	}
	was := s.favs.IsFavorite(id)
	if err := s.favs.Toggle(ctx, id); err != nil {
		s.printf("Failed to update favorites: %v\n", err)
		return
	}
	if was {
		s.printf("Removed %s from favorites\n", id)
	} else {
		s.printf("Added %s to favorites\n", id)
	}
}

func (s *shell) showFavorites(ctx context.Context) {
	switch s.favs.State() {
	case favorites.Unauthenticated:
		s.printf("Favorites are available only for authorized users. Please log in.\n")
		return
	case favorites.Loading:
		s.printf("Loading...\n")
		return
	}

	s.loader.Load(ctx, s.favs.Favorites())
	st := s.loader.Snapshot()
	if st.Err != nil {
		s.printf("Failed to load favorites: %v\n", st.Err)
		return
	}
	if len(st.Items) == 0 {
		s.printf("You have no favorite teachers yet.\n")
		return
	}
	for _, t := range st.Items {
		s.printTutor(t)
	}
}

func (s *shell) book(ctx context.Context, id string) {
	tutor, err := s.findTutor(ctx, id)
	if err != nil {
		s.printf("%v\n", err)
		return
	}
	b, err := s.prompt.PromptBooking(tutor)
	if err != nil {
		return
	}
	if _, err := s.store.BookTrial(ctx, tutor.ID, b); err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) {
			s.printf("%s\n", apiErr.Message)
			return
		}
		s.printf("Booking failed: %v\n", err)
		return
	}
	s.printf("Trial lesson requested. %s will contact you soon.\n", tutor.FullName())
}

func (s *shell) findTutor(ctx context.Context, id string) (models.Tutor, error) {
	for _, t := range s.list.Snapshot().Items {
		if t.ID == id {
			return t, nil
		}
	}
	found, err := s.store.FetchByIDs(ctx, []string{id})
	if err != nil {
		return models.Tutor{}, err
	}
	if len(found) == 0 {
		return models.Tutor{}, fmt.Errorf("teacher %s not found", id)
	}
	return found[0], nil
}

// main parses command-line flags, restores the saved session and starts the shell.
func main() {
	var (
		baseURL     string
		caFile      string
		sessionPath string
		pageSize    int
		showVer     bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert for a private server certificate")
	flag.StringVar(&sessionPath, "session", storage.DefaultSessionFile, "path to the saved session")
	flag.IntVar(&pageSize, "page-size", 4, "teachers per page")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("LearnLingo Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	lg := logger.New()
	if err := lg.InitConsole("warn"); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Log.Sync() }()

	tlsConfig, err := storage.TLSConfig(caFile)
	if err != nil {
		log.Fatal(err)
	}

	sessionFile := storage.NewSessionFile(sessionPath)
	session := gateway.NewSession(sessionFile, lg.Log)
	if token, id, ok, err := sessionFile.Load(); err != nil {
		lg.Log.Warn("ignoring saved session", zap.Error(err))
	} else if ok {
		session.Restore(token, id)
	}

	cfg := gateway.Config{
		BaseURL:    baseURL,
		HTTPClient: storage.NewHTTPClient(tlsConfig, 10*time.Second),
		TLS:        tlsConfig,
		Logger:     lg.Log,
	}
	store := gateway.NewHTTPStore(cfg, session)
	identity := gateway.NewHTTPIdentity(cfg, session)

	sh := &shell{
		out:      os.Stdout,
		prompt:   storage.NewPrompter(os.Stdin, os.Stdout),
		pageSize: pageSize,
		identity: identity,
		store:    store,
		list:     paging.NewController(store),
		filters:  filter.NewEngine(),
		favs:     favorites.New(store, identity),
		loader:   paging.NewLoader(store),
	}
	defer sh.list.Dispose()
	defer sh.loader.Dispose()
	defer sh.favs.Close()

	ctx := context.Background()
	sh.list.LoadFirstPage(ctx, pageSize)
	sh.show()

	sh.repl(ctx)
}
