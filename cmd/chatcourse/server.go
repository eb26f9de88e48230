package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"chatcourse/internal/metrics"
	"chatcourse/internal/models"
	"chatcourse/internal/service"
	"chatcourse/internal/tracing"
	distypes "chatcourse/pkg/discourse/types"
)

type Server struct {
	router        *mux.Router
	logger        *logrus.Logger
	reverse       *service.ReverseSyncEngine
	webhookSecret string
	port          int
	server        *http.Server
}

func NewServer(cfg *models.Config, reverse *service.ReverseSyncEngine, logger *logrus.Logger) *Server {
	s := &Server{
		router:        mux.NewRouter(),
		logger:        logger,
		reverse:       reverse,
		webhookSecret: cfg.Server.WebhookSecret,
		port:          cfg.Server.Port,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	webhook := s.router.PathPrefix("/webhook/discourse").Subrouter()
	webhook.HandleFunc("", s.handleDiscourseWebhook()).Methods(http.MethodPost)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Infof("Starting server on port %d", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}
}

// handleMetrics serves the in-memory metrics registry as JSON.
func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(metrics.GetAllMetrics()); err != nil {
			s.logger.WithError(err).Error("Failed to encode metrics")
			http.Error(w, "Failed to encode metrics", http.StatusInternalServerError)
		}
	}
}

// handleDiscourseWebhook verifies the event signature and dispatches post and
// topic events to the reverse sync engine. Unknown event types are
// acknowledged and ignored so Discourse does not retry them.
func (s *Server) handleDiscourseWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.WithFullTracing(r.Context())
		requestID := tracing.GetRequestID(ctx)

		body, err := verifySignature(r, s.webhookSecret, "X-Discourse-Event-Signature")
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"request_id": requestID,
			}).WithError(err).Warn("Webhook signature verification failed")
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}

		eventType := r.Header.Get("X-Discourse-Event-Type")
		eventName := r.Header.Get("X-Discourse-Event")

		log := s.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"event_type": eventType,
			"event":      eventName,
		})
		log.Info("Received Discourse webhook")
		metrics.IncrementCounter("webhook_events_total", map[string]string{"event_type": eventType}, "Discourse webhook events received")

		switch eventType {
		case "post":
			s.handlePostEvent(ctx, log, eventName, body)
		case "topic":
			s.handleTopicEvent(ctx, log, eventName, body)
		default:
			log.Debug("Ignoring event type")
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "success"})
	}
}

func (s *Server) handlePostEvent(ctx context.Context, log *logrus.Entry, eventName string, body []byte) {
	var payload distypes.WebhookPost
	if err := json.Unmarshal(body, &payload); err != nil {
		log.WithError(err).Error("Failed to decode post payload")
		return
	}

	switch eventName {
	case "post_created":
		if _, err := s.reverse.SyncPostToMessage(ctx, &payload.Post); err != nil {
			log.WithError(err).Error("Failed to sync created post")
		}
	case "post_edited":
		if _, err := s.reverse.SyncPostUpdate(ctx, &payload.Post); err != nil {
			log.WithError(err).Error("Failed to sync edited post")
		}
	case "post_destroyed":
		s.reverse.HandleDestroyed("post", payload.Post.ID)
	default:
		log.Debug("Ignoring post event")
	}
}

func (s *Server) handleTopicEvent(ctx context.Context, log *logrus.Entry, eventName string, body []byte) {
	var payload distypes.WebhookTopic
	if err := json.Unmarshal(body, &payload); err != nil {
		log.WithError(err).Error("Failed to decode topic payload")
		return
	}

	switch eventName {
	case "topic_created":
		if _, err := s.reverse.HandleTopicCreation(ctx, &payload.Topic); err != nil {
			log.WithError(err).Error("Failed to mirror created topic")
		}
	case "topic_edited":
		log.WithField("topic_id", payload.Topic.ID).Info("Topic edited, no propagation")
	case "topic_destroyed":
		s.reverse.HandleDestroyed("topic", payload.Topic.ID)
	default:
		log.Debug("Ignoring topic event")
	}
}
