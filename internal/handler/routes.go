package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/library-service/internal/middleware"
)

// NewRouter wires the public and bearer-protected routes
func NewRouter(h *Handler, tokens middleware.TokenVerifier, allowedOrigins []string, log *logrus.Logger) http.Handler {
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Resource not found.")
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	r := mux.NewRouter()
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = methodNotAllowed

	// Public routes
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", h.Login).Methods(http.MethodPost)

	// Protected routes
	books := r.PathPrefix("/api/books").Subrouter()
	books.Use(middleware.AuthMiddleware(tokens, log))
	books.NotFoundHandler = notFound
	books.MethodNotAllowedHandler = methodNotAllowed
	books.HandleFunc("", h.CreateBook).Methods(http.MethodPost)
	books.HandleFunc("", h.ListBooks).Methods(http.MethodGet)
	books.HandleFunc("/export", h.ExportBooks).Methods(http.MethodGet)
	books.HandleFunc("/{id}", h.GetBook).Methods(http.MethodGet)
	books.HandleFunc("/{id}", h.UpdateBook).Methods(http.MethodPut)
	books.HandleFunc("/{id}", h.DeleteBook).Methods(http.MethodDelete)

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
	})
	// logged outside mux so unmatched requests are recorded too
	return middleware.LoggingMiddleware(log)(c.Handler(r))
}
