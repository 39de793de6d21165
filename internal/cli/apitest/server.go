// Package apitest runs an in-process fake of the marketplace API for tests.
//
// It implements the envelope format, cookie-based access/refresh tokens and
// enough of the catalogue endpoints to drive the client end to end. Knobs on
// Server let tests expire tokens, fail or hold refreshes and count calls.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
)

const (
	// OTP is the one-time code every send-otp call issues
	OTP = "123456"

	accessTTL  = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
)

type account struct {
	user     client.User
	password string
}

type sprite struct {
	client.Sprite
	price     float64
	owner     string
	deletedAt *time.Time
}

// Server is a running fake API
type Server struct {
	ts     *httptest.Server
	secret []byte

	mu          sync.Mutex
	accounts    map[string]*account
	access      map[string]string
	refresh     map[string]string
	otps        map[string]string
	categories  []client.Category
	sprites     map[string]*sprite
	spriteOrder []string
	packs       map[string]*client.AssetPack
	packOrder   []string
	queries     map[string]url.Values

	refreshGate  chan struct{}
	failRefresh  bool
	rejectAccess bool
	nestedPages  bool

	refreshCalls atomic.Int32
	unauthorized atomic.Int32
}

// New starts a fake API and stops it when the test ends
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		secret:   []byte("apitest-secret"),
		accounts: make(map[string]*account),
		access:   make(map[string]string),
		refresh:  make(map[string]string),
		otps:     make(map[string]string),
		sprites:  make(map[string]*sprite),
		packs:    make(map[string]*client.AssetPack),
		queries:  make(map[string]url.Values),
	}
	s.ts = httptest.NewServer(s.routes())
	t.Cleanup(func() {
		s.releaseRefresh()
		s.ts.Close()
	})
	return s
}

// URL is the API root to hand to client.New
func (s *Server) URL() string {
	return s.ts.URL + "/api/v1"
}

// RefreshCalls counts POST /auth/refresh requests
func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// Unauthorized counts 401s returned by authenticated endpoints
func (s *Server) Unauthorized() int {
	return int(s.unauthorized.Load())
}

// ExpireAccessTokens invalidates every issued access token; refresh tokens
// stay valid.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]string)
}

// FailRefresh makes every refresh attempt return 401
func (s *Server) FailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// RejectAccess makes authenticated endpoints return 401 even for tokens
// issued by a successful refresh.
func (s *Server) RejectAccess(reject bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectAccess = reject
}

// NestedPages switches page responses to the {"content", "page": {...}} shape
func (s *Server) NestedPages(nested bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nestedPages = nested
}

// HoldRefresh parks refresh requests until the returned function is called
func (s *Server) HoldRefresh() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.refreshGate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			owned := s.refreshGate == gate
			if owned {
				s.refreshGate = nil
			}
			s.mu.Unlock()
			if owned {
				close(gate)
			}
		})
	}
}

func (s *Server) releaseRefresh() {
	s.mu.Lock()
	gate := s.refreshGate
	s.refreshGate = nil
	s.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

// LastQuery returns the query string of the most recent request to path
// (relative to the API root).
func (s *Server) LastQuery(path string) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[path]
}

// AddUser registers an account directly
func (s *Server) AddUser(email, password, username string, role client.Role) client.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, password, username, username, role)
}

func (s *Server) addUserLocked(email, password, username, fullName string, role client.Role) client.User {
	user := client.User{
		ID:         uuid.NewString(),
		Email:      email,
		Username:   username,
		FullName:   fullName,
		Role:       role,
		IsVerified: true,
		CreatedAt:  client.Timestamp{Time: time.Now()},
	}
	s.accounts[user.ID] = &account{user: user, password: password}
	return user
}

// AddCategory creates a category
func (s *Server) AddCategory(name string) client.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	category := client.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      slugify(name),
		CreatedAt: client.Timestamp{Time: time.Now()},
	}
	s.categories = append(s.categories, category)
	return category
}

// AddSprite creates a live sprite owned by ownerID
func (s *Server) AddSprite(ownerID, name string, price float64, categoryIDs ...string) client.Sprite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addSpriteLocked(ownerID, name, price, categoryIDs, "")
}

func (s *Server) addSpriteLocked(ownerID, name string, price float64, categoryIDs []string, imageName string) client.Sprite {
	id := uuid.NewString()
	if imageName == "" {
		imageName = slugify(name) + ".png"
	}
	record := &sprite{
		Sprite: client.Sprite{
			ID:            id,
			Name:          name,
			Slug:          slugify(name),
			ImageURL:      "https://cdn.pixelshop.test/sprites/" + imageName,
			CategoryIDs:   append([]string{}, categoryIDs...),
			CategoryNames: s.categoryNamesLocked(categoryIDs),
			CreatedBy:     ownerID,
			// Distinct, increasing creation times keep sort order stable.
			CreatedAt: client.Timestamp{Time: time.Now().Add(time.Duration(len(s.spriteOrder)) * time.Second)},
		},
		price: price,
		owner: ownerID,
	}
	s.sprites[id] = record
	s.spriteOrder = append(s.spriteOrder, id)
	return record.Sprite
}

// TrashSprite soft-deletes a sprite as if it had been deleted at deletedAt
func (s *Server) TrashSprite(id string, deletedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.sprites[id]; ok {
		record.deletedAt = &deletedAt
	}
}

// SpriteDeleted reports whether the sprite is in the trash; ok is false
// when it no longer exists at all.
func (s *Server) SpriteDeleted(id string) (deleted, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.sprites[id]
	if !ok {
		return false, false
	}
	return record.deletedAt != nil, true
}

// AddAssetPack creates an asset pack made of the given sprites
func (s *Server) AddAssetPack(ownerID, name string, price float64, spriteIDs ...string) client.AssetPack {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAssetPackLocked(ownerID, client.AssetPackRequest{Name: name, Price: price, SpriteIDs: spriteIDs}, "")
}

func (s *Server) addAssetPackLocked(ownerID string, in client.AssetPackRequest, imageName string) client.AssetPack {
	if imageName == "" {
		imageName = slugify(in.Name) + ".png"
	}
	pack := &client.AssetPack{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    "https://cdn.pixelshop.test/packs/" + imageName,
		CreatedBy:   ownerID,
		CreatedAt:   client.Timestamp{Time: time.Now().Add(time.Duration(len(s.packOrder)) * time.Second)},
	}
	s.fillPackSpritesLocked(pack, in.SpriteIDs)
	s.packs[pack.ID] = pack
	s.packOrder = append(s.packOrder, pack.ID)
	return *pack
}

func (s *Server) fillPackSpritesLocked(pack *client.AssetPack, spriteIDs []string) {
	pack.Sprites = []client.SpriteInfo{}
	seen := map[string]bool{}
	pack.CategoryIDs = []string{}
	for _, id := range spriteIDs {
		record, ok := s.sprites[id]
		if !ok {
			continue
		}
		pack.Sprites = append(pack.Sprites, client.SpriteInfo{ID: record.ID, Name: record.Name, ImageURL: record.ImageURL})
		for _, categoryID := range record.CategoryIDs {
			if !seen[categoryID] {
				seen[categoryID] = true
				pack.CategoryIDs = append(pack.CategoryIDs, categoryID)
			}
		}
	}
	pack.SpriteCount = len(pack.Sprites)
	pack.CategoryNames = s.categoryNamesLocked(pack.CategoryIDs)
}

func (s *Server) categoryNamesLocked(ids []string) []string {
	names := []string{}
	for _, id := range ids {
		for _, category := range s.categories {
			if category.ID == id {
				names = append(names, category.Name)
			}
		}
	}
	return names
}

// signAccessToken issues a short-lived HS256 access token for userID
func (s *Server) signAccessToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// issueTokens sets a fresh access/refresh cookie pair for userID
func (s *Server) issueTokens(c *gin.Context, userID string) error {
	access, err := s.signAccessToken(userID)
	if err != nil {
		return err
	}
	refresh := uuid.NewString()

	s.mu.Lock()
	s.access[access] = userID
	s.refresh[refresh] = userID
	s.mu.Unlock()

	c.SetCookie("access_token", access, int(accessTTL.Seconds()), "/", "", false, true)
	c.SetCookie("refresh_token", refresh, int(refreshTTL.Seconds()), "/", "", false, true)
	return nil
}

func clearTokens(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", false, true)
	c.SetCookie("refresh_token", "", -1, "/", "", false, true)
}

// requireAuth validates the access token cookie
func (s *Server) requireAuth(c *gin.Context) {
	token, err := c.Cookie("access_token")
	if err != nil || token == "" {
		s.reject(c)
		return
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		s.reject(c)
		return
	}

	s.mu.Lock()
	userID, ok := s.access[token]
	rejectAll := s.rejectAccess
	s.mu.Unlock()
	if !ok || rejectAll || userID != claims.Subject {
		s.reject(c)
		return
	}

	c.Set("userID", userID)
	c.Next()
}

func (s *Server) reject(c *gin.Context) {
	s.unauthorized.Add(1)
	fail(c, http.StatusUnauthorized, "Unauthorized")
}

// requireAdmin must run after requireAuth
func (s *Server) requireAdmin(c *gin.Context) {
	user := s.currentUser(c)
	if !user.IsAdmin() {
		fail(c, http.StatusForbidden, "Access denied")
		return
	}
	c.Next()
}

func (s *Server) currentUser(c *gin.Context) client.User {
	userID := c.GetString("userID")
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct, ok := s.accounts[userID]; ok {
		return acct.user
	}
	return client.User{}
}

func (s *Server) recordQuery(c *gin.Context) {
	path := c.Request.URL.Path
	if len(path) > len("/api/v1") {
		path = path[len("/api/v1"):]
	}
	s.mu.Lock()
	s.queries[path] = c.Request.URL.Query()
	s.mu.Unlock()
	c.Next()
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OK", "data": data})
}

func okMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "data": nil})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

func slugify(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			if len(out) > 0 && out[len(out)-1] != '-' {
				out = append(out, '-')
			}
		}
	}
	return string(out)
}
