package apitest

import (
	"cmp"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
)

func (s *Server) routes() http.Handler {
	r := gin.New()

	api := r.Group("/api/v1", s.recordQuery)

	authGroup := api.Group("/auth")
	authGroup.POST("/register/send-otp", s.sendOTP)
	authGroup.POST("/reset-password/send-otp", s.sendOTP)
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/reset-password", s.resetPassword)
	authGroup.POST("/refresh", s.refreshTokens)
	authGroup.POST("/logout", s.logout)
	authGroup.GET("/me", s.requireAuth, s.me)

	sprites := api.Group("/sprites")
	sprites.GET("", s.listSprites)
	sprites.GET("/me", s.requireAuth, s.listMySprites)
	sprites.GET("/user/:userId", s.requireAuth, s.requireAdmin, s.listUserSprites)
	sprites.GET("/trash", s.requireAuth, s.listTrash)
	sprites.GET("/:id", s.getSprite)
	sprites.POST("", s.requireAuth, s.createSprite)
	sprites.PUT("/:id", s.requireAuth, s.updateSprite)
	sprites.DELETE("/:id", s.requireAuth, s.deleteSprite)
	sprites.POST("/:id/restore", s.requireAuth, s.restoreSprite)
	sprites.DELETE("/:id/permanent", s.requireAuth, s.purgeSprite)

	packs := api.Group("/asset-packs")
	packs.GET("", s.listAssetPacks)
	packs.GET("/:id", s.getAssetPack)
	packs.POST("", s.requireAuth, s.createAssetPack)
	packs.PUT("/:id", s.requireAuth, s.updateAssetPack)
	packs.DELETE("/:id", s.requireAuth, s.deleteAssetPack)

	categories := api.Group("/categories")
	categories.GET("", s.listCategories)
	categories.GET("/:id", s.getCategory)
	categories.POST("", s.requireAuth, s.requireAdmin, s.createCategory)
	categories.PUT("/:id", s.requireAuth, s.requireAdmin, s.updateCategory)
	categories.DELETE("/:id", s.requireAuth, s.requireAdmin, s.deleteCategory)

	users := api.Group("/users")
	users.GET("", s.requireAuth, s.requireAdmin, s.listUsers)
	users.PUT("/me", s.requireAuth, s.updateProfile)
	users.PATCH("/me/avatar", s.requireAuth, s.updateAvatar)

	return r
}

// Auth

func (s *Server) sendOTP(c *gin.Context) {
	var req client.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		fail(c, http.StatusBadRequest, "Email is required")
		return
	}
	s.mu.Lock()
	s.otps[req.Email] = OTP
	s.mu.Unlock()
	okMessage(c, "OTP sent to "+req.Email)
}

func (s *Server) consumeOTPLocked(email, otp string) bool {
	want, ok := s.otps[email]
	if !ok || want != otp {
		return false
	}
	delete(s.otps, email)
	return true
}

func (s *Server) findByEmailLocked(email string) *account {
	for _, acct := range s.accounts {
		if strings.EqualFold(acct.user.Email, email) {
			return acct
		}
	}
	return nil
}

func (s *Server) register(c *gin.Context) {
	var req client.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	s.mu.Lock()
	if s.findByEmailLocked(req.Email) != nil {
		s.mu.Unlock()
		fail(c, http.StatusConflict, "Email already registered")
		return
	}
	if !s.consumeOTPLocked(req.Email, req.OTP) {
		s.mu.Unlock()
		fail(c, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}
	user := s.addUserLocked(req.Email, req.Password, req.Username, req.FullName, client.RoleUser)
	s.mu.Unlock()

	if err := s.issueTokens(c, user.ID); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, user)
}

func (s *Server) login(c *gin.Context) {
	var req client.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	s.mu.Lock()
	acct := s.findByEmailLocked(req.Email)
	s.mu.Unlock()
	if acct == nil || acct.password != req.Password {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := s.issueTokens(c, acct.user.ID); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Login successful.", "data": acct.user})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req client.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	s.mu.Lock()
	acct := s.findByEmailLocked(req.Email)
	if acct == nil || !s.consumeOTPLocked(req.Email, req.OTP) {
		s.mu.Unlock()
		fail(c, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}
	acct.password = req.NewPassword
	user := acct.user
	s.mu.Unlock()

	if err := s.issueTokens(c, user.ID); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, user)
}

func (s *Server) refreshTokens(c *gin.Context) {
	s.refreshCalls.Add(1)

	s.mu.Lock()
	gate := s.refreshGate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	failing := s.failRefresh
	s.mu.Unlock()
	if failing {
		fail(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	token, err := c.Cookie("refresh_token")
	if err != nil || token == "" {
		fail(c, http.StatusUnauthorized, "No refresh token found")
		return
	}

	s.mu.Lock()
	userID, found := s.refresh[token]
	if found {
		delete(s.refresh, token)
	}
	s.mu.Unlock()
	if !found {
		fail(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	if err := s.issueTokens(c, userID); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	okMessage(c, "Token refreshed.")
}

func (s *Server) logout(c *gin.Context) {
	if token, err := c.Cookie("refresh_token"); err == nil {
		s.mu.Lock()
		delete(s.refresh, token)
		s.mu.Unlock()
	}
	clearTokens(c)
	okMessage(c, "Logout successful.")
}

func (s *Server) me(c *gin.Context) {
	ok(c, s.currentUser(c))
}

// Pagination

func pageParams(c *gin.Context, defaultSize int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultSize)))
	if err != nil || size <= 0 {
		size = defaultSize
	}
	return page, size
}

func (s *Server) pageOf(c *gin.Context, items []any, defaultSize int) gin.H {
	page, size := pageParams(c, defaultSize)
	total := len(items)
	totalPages := (total + size - 1) / size

	start := min(page*size, total)
	end := min(start+size, total)
	content := items[start:end]

	s.mu.Lock()
	nested := s.nestedPages
	s.mu.Unlock()

	if nested {
		return gin.H{
			"content": content,
			"page": gin.H{
				"number":        page,
				"size":          size,
				"totalElements": total,
				"totalPages":    totalPages,
			},
		}
	}
	return gin.H{
		"content":       content,
		"number":        page,
		"size":          size,
		"totalElements": total,
		"totalPages":    totalPages,
	}
}

// Sprites

func (r *sprite) summary() client.SpriteSummary {
	summary := client.SpriteSummary{
		ID:        r.ID,
		Name:      r.Name,
		Slug:      r.Slug,
		Price:     r.price,
		ImageURL:  r.ImageURL,
		CreatedAt: r.CreatedAt,
	}
	if r.deletedAt != nil {
		summary.DeletedAt = &client.Timestamp{Time: *r.deletedAt}
	}
	return summary
}

func matchesKeyword(keyword string, fields ...string) bool {
	if keyword == "" {
		return true
	}
	keyword = strings.ToLower(keyword)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), keyword) {
			return true
		}
	}
	return false
}

func intersects(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, id := range want {
		if slices.Contains(have, id) {
			return true
		}
	}
	return false
}

func sortItems[T any](items []T, sortBy, sortOrder string, price func(T) float64, created func(T) time.Time) {
	slices.SortStableFunc(items, func(a, b T) int {
		var result int
		if sortBy == client.SortByPrice {
			result = cmp.Compare(price(a), price(b))
		} else {
			result = created(a).Compare(created(b))
		}
		if sortOrder != client.SortAsc {
			result = -result
		}
		return result
	})
}

func (s *Server) filterSprites(c *gin.Context, keep func(*sprite) bool) []any {
	keyword := c.Query("keyword")
	categoryIDs := c.QueryArray("categoryIds")

	s.mu.Lock()
	var matched []*sprite
	for _, id := range s.spriteOrder {
		record := s.sprites[id]
		if record == nil || !keep(record) {
			continue
		}
		if !matchesKeyword(keyword, record.Name) || !intersects(record.CategoryIDs, categoryIDs) {
			continue
		}
		matched = append(matched, record)
	}
	s.mu.Unlock()

	sortItems(matched, c.Query("sortBy"), c.Query("sortOrder"),
		func(r *sprite) float64 { return r.price },
		func(r *sprite) time.Time { return r.CreatedAt.Time })

	items := make([]any, 0, len(matched))
	for _, record := range matched {
		items = append(items, record.summary())
	}
	return items
}

func (s *Server) listSprites(c *gin.Context) {
	items := s.filterSprites(c, func(r *sprite) bool { return r.deletedAt == nil })
	ok(c, s.pageOf(c, items, client.DefaultPageSize))
}

func (s *Server) listMySprites(c *gin.Context) {
	userID := c.GetString("userID")
	items := s.filterSprites(c, func(r *sprite) bool { return r.deletedAt == nil && r.owner == userID })
	ok(c, s.pageOf(c, items, client.DefaultPageSize))
}

func (s *Server) listUserSprites(c *gin.Context) {
	userID := c.Param("userId")
	if _, err := uuid.Parse(userID); err != nil {
		fail(c, http.StatusBadRequest, "Invalid user id")
		return
	}
	items := s.filterSprites(c, func(r *sprite) bool { return r.deletedAt == nil && r.owner == userID })
	ok(c, s.pageOf(c, items, client.DefaultPageSize))
}

func (s *Server) listTrash(c *gin.Context) {
	user := s.currentUser(c)
	items := s.filterSprites(c, func(r *sprite) bool {
		return r.deletedAt != nil && (user.IsAdmin() || r.owner == user.ID)
	})
	ok(c, s.pageOf(c, items, client.TrashPageSize))
}

func (s *Server) getSprite(c *gin.Context) {
	s.mu.Lock()
	record, found := s.sprites[c.Param("id")]
	s.mu.Unlock()
	if !found || record.deletedAt != nil {
		fail(c, http.StatusNotFound, "Sprite not found")
		return
	}
	ok(c, record.Sprite)
}

// ownedSprite resolves :id to a sprite the caller may modify
func (s *Server) ownedSprite(c *gin.Context) (*sprite, bool) {
	user := s.currentUser(c)
	s.mu.Lock()
	record, found := s.sprites[c.Param("id")]
	s.mu.Unlock()
	if !found {
		fail(c, http.StatusNotFound, "Sprite not found")
		return nil, false
	}
	if record.owner != user.ID && !user.IsAdmin() {
		fail(c, http.StatusForbidden, "Access denied")
		return nil, false
	}
	return record, true
}

func bindDataPart(c *gin.Context, out any) bool {
	data := c.PostForm("data")
	if data == "" {
		fail(c, http.StatusBadRequest, "Missing data part")
		return false
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		fail(c, http.StatusBadRequest, "Invalid data part")
		return false
	}
	return true
}

func (s *Server) createSprite(c *gin.Context) {
	var req client.SpriteRequest
	if !bindDataPart(c, &req) {
		return
	}
	image, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, "Image is required")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, "Sprite name can't be blank")
		return
	}

	s.mu.Lock()
	created := s.addSpriteLocked(c.GetString("userID"), req.Name, 0, req.CategoryIDs, image.Filename)
	s.mu.Unlock()
	ok(c, created)
}

func (s *Server) updateSprite(c *gin.Context) {
	record, found := s.ownedSprite(c)
	if !found {
		return
	}
	var req client.SpriteRequest
	if !bindDataPart(c, &req) {
		return
	}

	s.mu.Lock()
	record.Name = req.Name
	record.Slug = slugify(req.Name)
	record.CategoryIDs = append([]string{}, req.CategoryIDs...)
	record.CategoryNames = s.categoryNamesLocked(req.CategoryIDs)
	if image, err := c.FormFile("image"); err == nil {
		record.ImageURL = "https://cdn.pixelshop.test/sprites/" + image.Filename
	}
	updated := record.Sprite
	s.mu.Unlock()
	ok(c, updated)
}

func (s *Server) deleteSprite(c *gin.Context) {
	record, found := s.ownedSprite(c)
	if !found {
		return
	}
	now := time.Now()
	s.mu.Lock()
	record.deletedAt = &now
	s.mu.Unlock()
	ok(c, nil)
}

func (s *Server) restoreSprite(c *gin.Context) {
	record, found := s.ownedSprite(c)
	if !found {
		return
	}
	s.mu.Lock()
	if record.deletedAt == nil {
		s.mu.Unlock()
		fail(c, http.StatusBadRequest, "Sprite is not in trash")
		return
	}
	record.deletedAt = nil
	restored := record.Sprite
	s.mu.Unlock()
	ok(c, restored)
}

func (s *Server) purgeSprite(c *gin.Context) {
	record, found := s.ownedSprite(c)
	if !found {
		return
	}
	s.mu.Lock()
	delete(s.sprites, record.ID)
	s.spriteOrder = slices.DeleteFunc(s.spriteOrder, func(id string) bool { return id == record.ID })
	s.mu.Unlock()
	ok(c, nil)
}

// Asset packs

func (s *Server) listAssetPacks(c *gin.Context) {
	keyword := c.Query("keyword")
	categoryIDs := c.QueryArray("categoryIds")
	minPrice, hasMin := parseFloat(c.Query("minPrice"))
	maxPrice, hasMax := parseFloat(c.Query("maxPrice"))

	s.mu.Lock()
	var matched []client.AssetPack
	for _, id := range s.packOrder {
		pack := s.packs[id]
		if pack == nil {
			continue
		}
		if !matchesKeyword(keyword, pack.Name, pack.Description) || !intersects(pack.CategoryIDs, categoryIDs) {
			continue
		}
		if (hasMin && pack.Price < minPrice) || (hasMax && pack.Price > maxPrice) {
			continue
		}
		matched = append(matched, *pack)
	}
	s.mu.Unlock()

	sortItems(matched, c.Query("sortBy"), c.Query("sortOrder"),
		func(p client.AssetPack) float64 { return p.Price },
		func(p client.AssetPack) time.Time { return p.CreatedAt.Time })

	items := make([]any, 0, len(matched))
	for _, pack := range matched {
		items = append(items, pack)
	}
	ok(c, s.pageOf(c, items, client.DefaultPageSize))
}

func parseFloat(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	return f, err == nil
}

func (s *Server) getAssetPack(c *gin.Context) {
	s.mu.Lock()
	pack, found := s.packs[c.Param("id")]
	var out client.AssetPack
	if found {
		out = *pack
	}
	s.mu.Unlock()
	if !found {
		fail(c, http.StatusNotFound, "Asset pack not found")
		return
	}
	ok(c, out)
}

func (s *Server) createAssetPack(c *gin.Context) {
	var req client.AssetPackRequest
	if !bindDataPart(c, &req) {
		return
	}
	image, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, "Image is required")
		return
	}

	s.mu.Lock()
	pack := s.addAssetPackLocked(c.GetString("userID"), req, image.Filename)
	s.mu.Unlock()
	ok(c, pack)
}

func (s *Server) updateAssetPack(c *gin.Context) {
	var req client.AssetPackRequest
	if !bindDataPart(c, &req) {
		return
	}

	s.mu.Lock()
	pack, found := s.packs[c.Param("id")]
	if !found {
		s.mu.Unlock()
		fail(c, http.StatusNotFound, "Asset pack not found")
		return
	}
	pack.Name = req.Name
	pack.Description = req.Description
	pack.Price = req.Price
	s.fillPackSpritesLocked(pack, req.SpriteIDs)
	if image, err := c.FormFile("image"); err == nil {
		pack.ImageURL = "https://cdn.pixelshop.test/packs/" + image.Filename
	}
	out := *pack
	s.mu.Unlock()
	ok(c, out)
}

func (s *Server) deleteAssetPack(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	_, found := s.packs[id]
	delete(s.packs, id)
	s.packOrder = slices.DeleteFunc(s.packOrder, func(packID string) bool { return packID == id })
	s.mu.Unlock()
	if !found {
		fail(c, http.StatusNotFound, "Asset pack not found")
		return
	}
	ok(c, nil)
}

// Categories

func (s *Server) listCategories(c *gin.Context) {
	s.mu.Lock()
	out := slices.Clone(s.categories)
	s.mu.Unlock()
	if out == nil {
		out = []client.Category{}
	}
	ok(c, out)
}

func (s *Server) getCategory(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, category := range s.categories {
		if category.ID == id {
			ok(c, category)
			return
		}
	}
	fail(c, http.StatusNotFound, "Category not found")
}

func (s *Server) createCategory(c *gin.Context) {
	var req client.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, "Category name is required")
		return
	}
	category := s.AddCategory(req.Name)

	s.mu.Lock()
	for i := range s.categories {
		if s.categories[i].ID == category.ID {
			s.categories[i].Description = req.Description
			category = s.categories[i]
		}
	}
	s.mu.Unlock()
	ok(c, category)
}

func (s *Server) updateCategory(c *gin.Context) {
	var req client.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, "Category name is required")
		return
	}
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories[i].Name = req.Name
			s.categories[i].Slug = slugify(req.Name)
			s.categories[i].Description = req.Description
			ok(c, s.categories[i])
			return
		}
	}
	fail(c, http.StatusNotFound, "Category not found")
}

func (s *Server) deleteCategory(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	before := len(s.categories)
	s.categories = slices.DeleteFunc(s.categories, func(category client.Category) bool { return category.ID == id })
	removed := len(s.categories) < before
	s.mu.Unlock()
	if !removed {
		fail(c, http.StatusNotFound, "Category not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deleted", "data": "Category deleted"})
}

// Users

func (s *Server) listUsers(c *gin.Context) {
	keyword := c.Query("keyword")

	s.mu.Lock()
	var matched []client.User
	for _, acct := range s.accounts {
		if matchesKeyword(keyword, acct.user.Username, acct.user.Email, acct.user.FullName) {
			matched = append(matched, acct.user)
		}
	}
	s.mu.Unlock()

	slices.SortFunc(matched, func(a, b client.User) int { return cmp.Compare(a.Username, b.Username) })

	items := make([]any, 0, len(matched))
	for _, user := range matched {
		items = append(items, user)
	}
	ok(c, s.pageOf(c, items, client.DefaultPageSize))
}

func (s *Server) updateProfile(c *gin.Context) {
	var req client.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.FullName == "" {
		fail(c, http.StatusBadRequest, "Username and full name are required")
		return
	}

	s.mu.Lock()
	acct := s.accounts[c.GetString("userID")]
	acct.user.Username = req.Username
	acct.user.FullName = req.FullName
	user := acct.user
	s.mu.Unlock()
	ok(c, user)
}

func (s *Server) updateAvatar(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "File is required")
		return
	}

	avatar := "https://cdn.pixelshop.test/avatars/" + file.Filename
	s.mu.Lock()
	acct := s.accounts[c.GetString("userID")]
	acct.user.AvatarURL = &avatar
	user := acct.user
	s.mu.Unlock()
	ok(c, user)
}
