package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"magic-counter/internal/domain"
	"magic-counter/internal/generator"
	"magic-counter/internal/repository"
	"magic-counter/internal/service"
)

// CounterServer exposes the core over a JSON surface: entity CRUD, the
// game log operations, derived views, debounced presses, card lookup and
// the developer tooling (export/import/reset/seed).
type CounterServer struct {
	library  *service.LibraryService
	games    *service.GameService
	views    *service.ViewService
	archive  *service.ArchiveService
	cards    *service.CardService
	controls *ControlRegistry
	hub      *Hub
	logger   zerolog.Logger
}

func NewCounterServer(
	library *service.LibraryService,
	games *service.GameService,
	views *service.ViewService,
	archive *service.ArchiveService,
	cards *service.CardService,
	controls *ControlRegistry,
	hub *Hub,
	logger zerolog.Logger,
) *CounterServer {
	return &CounterServer{
		library:  library,
		games:    games,
		views:    views,
		archive:  archive,
		cards:    cards,
		controls: controls,
		hub:      hub,
		logger:   logger,
	}
}

// Routes registers every handler on the mux.
func (s *CounterServer) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", s.listUsers)
	mux.HandleFunc("POST /api/users", s.addUser)
	mux.HandleFunc("PATCH /api/users/{id}", s.renameUser)
	mux.HandleFunc("DELETE /api/users/{id}", s.removeUser)

	mux.HandleFunc("GET /api/decks", s.listDecks)
	mux.HandleFunc("POST /api/decks", s.addDeck)
	mux.HandleFunc("PATCH /api/decks/{id}", s.updateDeck)
	mux.HandleFunc("DELETE /api/decks/{id}", s.removeDeck)

	mux.HandleFunc("GET /api/games", s.listGames)
	mux.HandleFunc("POST /api/games", s.addGame)
	mux.HandleFunc("GET /api/games/{id}", s.gameView)
	mux.HandleFunc("DELETE /api/games/{id}", s.removeGame)
	mux.HandleFunc("GET /api/games/{id}/history", s.gameHistory)
	mux.HandleFunc("POST /api/games/{id}/start", s.startGame)
	mux.HandleFunc("POST /api/games/{id}/turn", s.advanceTurn)
	mux.HandleFunc("POST /api/games/{id}/finish", s.finishGame)
	mux.HandleFunc("POST /api/games/{id}/monarch", s.stealMonarch)
	mux.HandleFunc("POST /api/games/{id}/undo", s.undoLastAction)
	mux.HandleFunc("DELETE /api/games/{id}/actions/{actionId}", s.removeAction)
	mux.HandleFunc("POST /api/games/{id}/players/{playerId}/press", s.press)
	mux.HandleFunc("GET /api/games/{id}/players/{playerId}/pending", s.pending)
	mux.HandleFunc("POST /api/games/{id}/players/{playerId}/flush", s.flush)

	mux.HandleFunc("GET /api/cards/search", s.searchCards)

	mux.HandleFunc("GET /api/export", s.export)
	mux.HandleFunc("POST /api/import", s.importSnapshot)
	mux.HandleFunc("GET /api/debug/status", s.debugStatus)
	mux.HandleFunc("POST /api/debug/reset/{collection}", s.debugReset)
	mux.HandleFunc("POST /api/debug/seed", s.debugSeed)

	mux.HandleFunc("GET /ws/games/{id}", s.hub.ServeWS)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidImport):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// Users

func (s *CounterServer) listUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.library.Users())
}

func (s *CounterServer) addUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decode(r, &body); err != nil || body.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	user, err := s.library.AddUser(r.Context(), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *CounterServer) renameUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decode(r, &body); err != nil || body.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if err := s.library.RenameUser(r.Context(), r.PathValue("id"), body.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *CounterServer) removeUser(w http.ResponseWriter, r *http.Request) {
	if err := s.library.RemoveUser(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Decks

func (s *CounterServer) listDecks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.library.Decks())
}

func (s *CounterServer) addDeck(w http.ResponseWriter, r *http.Request) {
	var body repository.NewDeck
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid deck payload"})
		return
	}
	deck, err := s.library.AddDeck(r.Context(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}

func (s *CounterServer) updateDeck(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       *string             `json:"name"`
		Colors     []domain.ManaColor  `json:"colors"`
		Commanders []domain.Commander  `json:"commanders"`
		Options    []domain.DeckOption `json:"options"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid deck payload"})
		return
	}
	err := s.library.UpdateDeck(r.Context(), r.PathValue("id"), func(d *domain.Deck) {
		if body.Name != nil {
			d.Name = *body.Name
		}
		if body.Colors != nil {
			d.Colors = body.Colors
		}
		if body.Commanders != nil {
			d.Commanders = body.Commanders
		}
		if body.Options != nil {
			d.Options = body.Options
		}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *CounterServer) removeDeck(w http.ResponseWriter, r *http.Request) {
	if err := s.library.RemoveDeck(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Games

func (s *CounterServer) listGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.games.Games())
}

func (s *CounterServer) addGame(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Players      []domain.Player `json:"players"`
		TurnTracking bool            `json:"turnTracking"`
		StartingLife int             `json:"startingLife"`
		Commanders   bool            `json:"commanders"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid game payload"})
		return
	}
	id, err := s.games.AddGame(r.Context(), body.Players, body.TurnTracking, body.StartingLife, body.Commanders)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *CounterServer) gameView(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.GameView(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *CounterServer) removeGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	s.controls.CloseGame(r.Context(), gameID)
	if err := s.games.RemoveGame(r.Context(), gameID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *CounterServer) gameHistory(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if _, ok := s.games.Game(gameID); !ok {
		writeError(w, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.games.GroupActionsByRound(gameID))
}

func (s *CounterServer) startGame(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstPlayerID string `json:"firstPlayerId"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := s.games.StartGame(r.Context(), r.PathValue("id"), body.FirstPlayerID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *CounterServer) advanceTurn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		To string `json:"to"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := s.games.AdvanceTurn(r.Context(), r.PathValue("id"), body.To); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *CounterServer) finishGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	var body struct {
		Winner       string              `json:"winner"`
		WinCondition domain.WinCondition `json:"winCondition"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := s.games.FinishGame(r.Context(), gameID, body.Winner, body.WinCondition); err != nil {
		writeError(w, err)
		return
	}
	s.controls.CloseGame(r.Context(), gameID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *CounterServer) stealMonarch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if err := s.games.StealMonarch(r.Context(), r.PathValue("id"), body.From, body.To); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *CounterServer) undoLastAction(w http.ResponseWriter, r *http.Request) {
	if err := s.games.UndoLastAction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *CounterServer) removeAction(w http.ResponseWriter, r *http.Request) {
	if err := s.games.RemoveAction(r.Context(), r.PathValue("id"), r.PathValue("actionId")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Debounced life controls

func (s *CounterServer) press(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	playerID := r.PathValue("playerId")
	var body struct {
		Direction   int    `json:"direction"`
		Long        bool   `json:"long"`
		Poison      bool   `json:"poison"`
		CommanderID string `json:"commanderId"`
		SourceID    string `json:"sourceId"`
	}
	if err := decode(r, &body); err != nil || (body.Direction != 1 && body.Direction != -1) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "direction must be 1 or -1"})
		return
	}

	ctrl := s.controls.Control(gameID, playerID)
	ctrl.SetSource(body.SourceID)
	ctrl.SetPoison(body.Poison)
	ctrl.SetCommander(body.CommanderID)
	if body.Long {
		ctrl.LongPress(body.Direction)
	} else {
		ctrl.Tap(body.Direction)
	}

	pending, poison := ctrl.Pending()
	writeJSON(w, http.StatusOK, map[string]any{"pending": pending, "poison": poison})
}

func (s *CounterServer) pending(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controls.Control(r.PathValue("id"), r.PathValue("playerId"))
	pending, poison := ctrl.Pending()
	writeJSON(w, http.StatusOK, map[string]any{"pending": pending, "poison": poison})
}

func (s *CounterServer) flush(w http.ResponseWriter, r *http.Request) {
	ctrl := s.controls.Control(r.PathValue("id"), r.PathValue("playerId"))
	if err := ctrl.Flush(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Card lookup

func (s *CounterServer) searchCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}
	cards, err := s.cards.Search(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// Developer tooling

func (s *CounterServer) export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", "attachment; filename=magic-counter-export.json")
	writeJSON(w, http.StatusOK, s.archive.Export())
}

func (s *CounterServer) importSnapshot(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decode(r, &raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := s.archive.Import(r.Context(), raw); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *CounterServer) debugStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.archive.CorruptCollections())
}

func (s *CounterServer) debugReset(w http.ResponseWriter, r *http.Request) {
	if err := s.archive.Reset(r.Context(), r.PathValue("collection")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *CounterServer) debugSeed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Users int   `json:"users"`
		Decks int   `json:"decks"`
		Games int   `json:"games"`
		Seed  int64 `json:"seed"`
	}
	if err := decode(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	gen := generator.New(body.Seed)
	for i := 0; i < body.Users; i++ {
		if _, err := s.library.AddUser(r.Context(), gen.User().Name); err != nil {
			writeError(w, err)
			return
		}
	}
	users := s.library.Users()
	for i := 0; i < body.Decks; i++ {
		deck := gen.Deck(users)
		if _, err := s.library.AddDeck(r.Context(), repository.NewDeck{
			CreatedBy:  deck.CreatedBy,
			Name:       deck.Name,
			Colors:     deck.Colors,
			Commanders: deck.Commanders,
			Options:    deck.Options,
		}); err != nil {
			writeError(w, err)
			return
		}
	}
	decks := s.library.Decks()
	for i := 0; i < body.Games; i++ {
		game, err := gen.Game(users, decks)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if err := s.importGame(r, game); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users": body.Users,
		"decks": body.Decks,
		"games": body.Games,
	})
}

// importGame stores a fully generated game through the update path so it
// persists with its simulated log intact.
func (s *CounterServer) importGame(r *http.Request, game domain.Game) error {
	id, err := s.games.AddGame(r.Context(), game.Players, game.TurnTracking, game.StartingLife, game.Commanders)
	if err != nil {
		return err
	}
	return s.games.UpdateGame(r.Context(), id, func(g *domain.Game) {
		g.State = game.State
		g.Winner = game.Winner
		g.WinCondition = game.WinCondition
		g.Actions = game.Actions
	})
}
