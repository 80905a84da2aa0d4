package session

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session est la projection réduite de l'utilisateur authentifié.
type Session struct {
	UserID     string `json:"userId"`
	Matricule  string `json:"matricule"`
	NomComplet string `json:"nomComplet"`
	Role       string `json:"role"`
	Token      string `json:"-"`
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store conserve les sessions actives dans un stockage durable et publie
// la dernière session connue sur un flux observable.
type Store struct {
	redis redisCommander
	ttl   time.Duration

	mu      sync.RWMutex
	current *Session
	subs    map[chan *Session]struct{}
}

// NewStore crée le magasin de sessions adossé à Redis.
func NewStore(client redisCommander, ttl time.Duration) *Store {
	return &Store{
		redis: client,
		ttl:   ttl,
		subs:  make(map[chan *Session]struct{}),
	}
}

// Key construit la clé de persistance à partir du jeton porteur.
func Key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("session:%s", base64.RawURLEncoding.EncodeToString(sum[:]))
}

// Put persiste la session et la publie sur le flux.
func (s *Store) Put(ctx context.Context, sess *Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, Key(sess.Token), payload, s.ttl).Err(); err != nil {
		return err
	}
	s.publish(sess)
	return nil
}

// Resolve relit la session persistée pour un jeton. Un enregistrement
// absent ou corrompu donne nil, jamais une erreur.
func (s *Store) Resolve(ctx context.Context, token string) *Session {
	raw, err := s.redis.Get(ctx, Key(token)).Bytes()
	if err != nil {
		return nil
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil
	}
	sess.Token = token
	return &sess
}

// Drop supprime la session persistée et publie nil.
func (s *Store) Drop(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, Key(token)).Err(); err != nil && err != redis.Nil {
		return err
	}
	s.publish(nil)
	return nil
}

// Current lit de façon synchrone la dernière valeur publiée.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe enregistre un abonné au flux de sessions. Les envois ne
// bloquent jamais l'éditeur: un abonné en retard perd les valeurs
// intermédiaires mais peut toujours lire Current.
func (s *Store) Subscribe() chan *Session {
	ch := make(chan *Session, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

// Unsubscribe retire un abonné et ferme son canal.
func (s *Store) Unsubscribe(ch chan *Session) {
	s.mu.Lock()
	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
	s.mu.Unlock()
}

func (s *Store) publish(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = sess
	for ch := range s.subs {
		select {
		case ch <- sess:
		default:
			// abonné en retard: on remplace la valeur en attente
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- sess:
			default:
			}
		}
	}
}
