package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/utils"
)

func fakeAPI(t *testing.T) *httptest.Server {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/t/:tenant/waiter/login", func(c *gin.Context) {
		var body struct {
			PIN string `json:"pin"`
		}
		_ = c.ShouldBindJSON(&body)
		if body.PIN != "4821" {
			utils.RespondCode(c, http.StatusUnauthorized, utils.CodeLoginFailed, "Login failed", nil)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
			"token":  "session-" + c.Param("tenant"),
			"waiter": gin.H{"id": 7, "name": "Ana"},
		})
	})
	r.GET("/t/:tenant/waiter/orders", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer session-"+c.Param("tenant") {
			utils.RespondCode(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid or expired session", nil)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Open orders", gin.H{
			"orders":     []models.Order{{ID: 1, Reference: "r-1", Status: models.OrderOpen}},
			"fetched_at": "2026-01-02T03:04:05Z",
		})
	})
	r.PATCH("/t/:tenant/waiter/orders/:id", func(c *gin.Context) {
		utils.RespondCode(c, http.StatusConflict, utils.CodeStateConflict, "order status conflict",
			models.Order{ID: 1, Status: models.OrderFulfilled})
	})
	r.GET("/t/:tenant/menu", func(c *gin.Context) {
		c.String(http.StatusBadGateway, "upstream down")
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestWaiterLoginKeepsSession(t *testing.T) {
	srv := fakeAPI(t)
	c := New(srv.URL+"/", "bistro-x")

	_, err := c.WaiterOrders(context.Background())
	assert.True(t, HasCode(err, utils.CodeUnauthorized))

	who, err := c.WaiterLogin(context.Background(), "4821")
	require.NoError(t, err)
	assert.Equal(t, uint(7), who.ID)
	assert.Equal(t, "session-bistro-x", c.Session)

	feed, err := c.WaiterOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, feed.Orders, 1)
	assert.Equal(t, "r-1", feed.Orders[0].Reference)
	assert.Equal(t, 2026, feed.FetchedAt.Year())
}

func TestWaiterLoginFailureCarriesCode(t *testing.T) {
	srv := fakeAPI(t)
	c := New(srv.URL, "bistro-x")

	_, err := c.WaiterLogin(context.Background(), "0000")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, utils.CodeLoginFailed, apiErr.Code)
	assert.Empty(t, c.Session)
}

func TestAdvanceConflictReturnsCurrentOrder(t *testing.T) {
	srv := fakeAPI(t)
	c := New(srv.URL, "bistro-x")

	order, err := c.Advance(context.Background(), 1, models.OrderInProgress)
	assert.True(t, HasCode(err, utils.CodeStateConflict))
	assert.Equal(t, models.OrderFulfilled, order.Status)
}

func TestNonEnvelopeResponse(t *testing.T) {
	srv := fakeAPI(t)
	c := New(srv.URL, "bistro-x")

	_, err := c.Menu(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Code)
}
