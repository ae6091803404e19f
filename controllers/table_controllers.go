package controllers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableorder/middlewares"
	"github.com/yeremiapane/tableorder/services"
	"github.com/yeremiapane/tableorder/tabletoken"
	"github.com/yeremiapane/tableorder/utils"
)

type TableController struct {
	Tables        *services.TableRegistry
	Keys          *tabletoken.Keyring
	PublicBaseURL string
}

func NewTableController(tables *services.TableRegistry, keys *tabletoken.Keyring, publicBaseURL string) *TableController {
	return &TableController{Tables: tables, Keys: keys, PublicBaseURL: publicBaseURL}
}

// CreateTable -> menambahkan meja baru
func (tc *TableController) CreateTable(c *gin.Context) {
	var req CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondBadRequest(c, err)
		return
	}

	table, err := tc.Tables.Create(c.Request.Context(), middlewares.CurrentTenant(c).ID, req.Label)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> menampilkan seluruh meja
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Tables.List(c.Request.Context(), middlewares.CurrentTenant(c).ID)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTable(c *gin.Context) {
	tableID, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	table, err := tc.Tables.Get(c.Request.Context(), middlewares.CurrentTenant(c).ID, tableID)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// AssignTable -> staff override of the table's waiter
func (tc *TableController) AssignTable(c *gin.Context) {
	tableID, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	var req AssignTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	table, err := tc.Tables.Assign(c.Request.Context(), middlewares.CurrentTenant(c).ID, tableID, req.WaiterID)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table assigned", table)
}

// GetTableToken -> signed token and scan URL for printing the table's QR code
func (tc *TableController) GetTableToken(c *gin.Context) {
	tableID, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	tenant := middlewares.CurrentTenant(c)

	table, err := tc.Tables.Get(c.Request.Context(), tenant.ID, tableID)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}
	codec, err := tc.Keys.For(tenant.TokenSecret)
	if err != nil {
		respondServiceError(c, err, nil)
		return
	}

	token := codec.Sign(strconv.FormatUint(uint64(table.ID), 10))
	utils.RespondJSON(c, http.StatusOK, "Table token", gin.H{
		"table_id": table.ID,
		"label":    table.Label,
		"token":    token,
		"version":  tabletoken.Version,
		"scan_url": tc.PublicBaseURL + "/t/" + url.PathEscape(tenant.Slug) + "/scan?token=" + token,
	})
}

// DeleteTable -> menghapus meja
func (tc *TableController) DeleteTable(c *gin.Context) {
	tableID, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	if err := tc.Tables.Delete(c.Request.Context(), middlewares.CurrentTenant(c).ID, tableID); err != nil {
		respondServiceError(c, err, nil)
		return
	}

	utils.InfoLogger.Printf("Table %d deleted", tableID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{
		"id": tableID,
	})
}
