package controller

import (
	"strconv"
	"strings"

	"probrowse/internal/browse/listing"
	"probrowse/internal/browse/service"
	"probrowse/internal/common/http/middleware"
	usermodel "probrowse/internal/user/model"
	pkgerrors "probrowse/pkg/errors"
	"probrowse/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// BrowseController handles the problem browsing HTTP endpoints.
type BrowseController struct {
	browseService *service.BrowseService
}

// NewBrowseController creates a new BrowseController.
func NewBrowseController(browseService *service.BrowseService) *BrowseController {
	return &BrowseController{browseService: browseService}
}

// RegisterRoutes mounts the browse API under the given router group.
// authRequired guards the preference write route.
func (h *BrowseController) RegisterRoutes(api *gin.RouterGroup, authRequired gin.HandlerFunc) {
	api.GET("/problems", h.ListProblems)
	api.GET("/contests", h.ListContests)
	api.GET("/users/:user/stats", h.UserStats)
	api.GET("/users/:user/recommendations", h.Recommendations)
	api.GET("/users/:user/preferences", h.GetPreferences)
	api.PUT("/users/:user/preferences", authRequired, h.PutPreferences)
}

// ListProblems handles the filtered catalog listing.
func (h *BrowseController) ListProblems(c *gin.Context) {
	opts, err := decodeListOptions(c)
	if err != nil {
		response.ErrorWithCode(c, pkgerrors.InvalidListOption, err.Error())
		return
	}

	userID := strings.TrimSpace(c.Query("user"))
	entries, err := h.browseService.ListProblems(c.Request.Context(), userID, opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ListProblemsResponse{Total: len(entries), Problems: entries})
}

// ListContests handles the contest listing.
func (h *BrowseController) ListContests(c *gin.Context) {
	contests, err := h.browseService.ListContests(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"total": len(contests), "contests": contests})
}

// UserStats handles the per-user statistics summary.
func (h *BrowseController) UserStats(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user"))
	if userID == "" {
		response.BadRequest(c, "Invalid user id")
		return
	}
	stats, err := h.browseService.UserStats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// Recommendations handles band recommendations for a user.
func (h *BrowseController) Recommendations(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user"))
	if userID == "" {
		response.BadRequest(c, "Invalid user id")
		return
	}

	input := service.RecommendInput{}
	if band, ok := c.GetQuery("band"); ok {
		input.Band = &band
	}
	if exclude, ok := c.GetQuery("exclude"); ok {
		input.Exclude = &exclude
	}
	if raw, ok := c.GetQuery("experimental"); ok {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			response.ErrorWithCode(c, pkgerrors.InvalidRecommendOption, "Invalid experimental flag")
			return
		}
		input.IncludeExperimental = &include
	}
	if raw, ok := c.GetQuery("count"); ok {
		count, err := strconv.Atoi(raw)
		if err != nil {
			response.ErrorWithCode(c, pkgerrors.InvalidRecommendOption, "Invalid count")
			return
		}
		input.Count = &count
	}

	recommendations, err := h.browseService.Recommend(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"total": len(recommendations), "recommendations": recommendations})
}

// GetPreferences returns the user's stored options.
func (h *BrowseController) GetPreferences(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user"))
	if userID == "" {
		response.BadRequest(c, "Invalid user id")
		return
	}
	pref, err := h.browseService.GetPreference(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pref)
}

// PutPreferences saves the user's options. The JWT subject must match
// the target user.
func (h *BrowseController) PutPreferences(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user"))
	if userID == "" {
		response.BadRequest(c, "Invalid user id")
		return
	}
	subject, ok := middleware.AuthSubject(c)
	if !ok || subject != userID {
		response.Error(c, pkgerrors.New(pkgerrors.PreferenceForbidden))
		return
	}

	var req PutPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request parameters")
		return
	}

	err := h.browseService.SavePreference(c.Request.Context(), usermodel.Preference{
		UserID:              userID,
		Band:                req.Band,
		Exclude:             req.Exclude,
		IncludeExperimental: req.IncludeExperimental,
		Count:               req.Count,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Preferences saved", nil)
}

// ListProblemsResponse defines the listing payload.
type ListProblemsResponse struct {
	Total    int             `json:"total"`
	Problems []listing.Entry `json:"problems"`
}

// PutPreferencesRequest defines the preference update payload.
type PutPreferencesRequest struct {
	Band                string `json:"band" binding:"required"`
	Exclude             string `json:"exclude" binding:"required"`
	IncludeExperimental bool   `json:"include_experimental"`
	Count               int    `json:"count" binding:"required"`
}

func decodeListOptions(c *gin.Context) (listing.Options, error) {
	opts := listing.Options{}

	var err error
	if opts.PointFrom, err = queryFloat(c, "point_from"); err != nil {
		return opts, err
	}
	if opts.PointTo, err = queryFloat(c, "point_to"); err != nil {
		return opts, err
	}
	if opts.DifficultyFrom, err = queryFloat(c, "difficulty_from"); err != nil {
		return opts, err
	}
	if opts.DifficultyTo, err = queryFloat(c, "difficulty_to"); err != nil {
		return opts, err
	}

	switch strings.ToLower(strings.TrimSpace(c.Query("rated"))) {
	case "", "all":
	case "only", "true":
		opts.RatedOnly = true
	case "none", "false":
		opts.UnratedOnly = true
	default:
		return opts, errInvalidParam("rated")
	}

	if opts.Status, err = listing.ParseStatus(c.Query("status")); err != nil {
		return opts, err
	}
	if opts.Sort, err = listing.ParseSortKey(c.Query("sort")); err != nil {
		return opts, err
	}

	switch strings.ToLower(strings.TrimSpace(c.Query("order"))) {
	case "", "asc":
	case "desc":
		opts.Desc = true
	default:
		return opts, errInvalidParam("order")
	}

	if raw, ok := c.GetQuery("experimental"); ok {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, errInvalidParam("experimental")
		}
		opts.IncludeExperimental = include
	}

	return opts, nil
}

func queryFloat(c *gin.Context, name string) (*float64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errInvalidParam(name)
	}
	return &value, nil
}

type invalidParamError struct {
	name string
}

func (e invalidParamError) Error() string {
	return "invalid query parameter " + e.name
}

func errInvalidParam(name string) error {
	return invalidParamError{name: name}
}
