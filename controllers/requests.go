package controllers

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/services"
)

var pinRegex = regexp.MustCompile(`^[0-9]{4}$`)

type WaiterLoginRequest struct {
	PIN string `json:"pin"`
}

func (req *WaiterLoginRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.PIN, validation.Required, validation.Match(pinRegex)),
	)
}

type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *StaffLoginRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
	)
}

type RegisterStaffRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (req *RegisterStaffRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&req.Role, validation.Required, validation.In(models.RoleAdmin, models.RoleStaff)),
	)
}

type OrderLineRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

func (req OrderLineRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.ItemID, validation.Required, validation.Length(1, 64)),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1), validation.Max(services.MaxLineQuantity)),
	)
}

// SubmitOrderRequest is a guest cart at submission: the scanned token and
// the item ids with quantities. Names and prices are never taken from here.
type SubmitOrderRequest struct {
	Token string             `json:"token"`
	Items []OrderLineRequest `json:"items"`
}

func (req *SubmitOrderRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Token, validation.Required),
		validation.Field(&req.Items, validation.Required, validation.Length(1, 100)),
	)
}

func (req *SubmitOrderRequest) lines() []services.LineRequest {
	out := make([]services.LineRequest, 0, len(req.Items))
	for _, it := range req.Items {
		out = append(out, services.LineRequest{ItemID: it.ItemID, Quantity: it.Quantity})
	}
	return out
}

type AdvanceOrderRequest struct {
	Status models.OrderStatus `json:"status"`
}

func (req *AdvanceOrderRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Status, validation.Required,
			validation.In(models.OrderOpen, models.OrderInProgress, models.OrderFulfilled)),
	)
}

type CreateTableRequest struct {
	Label string `json:"label"`
}

func (req *CreateTableRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Label, validation.Required, validation.Length(1, 50)),
	)
}

// AssignTableRequest sets the table's waiter; a null waiter_id unassigns.
type AssignTableRequest struct {
	WaiterID *uint `json:"waiter_id"`
}

type CreateWaiterRequest struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

func (req *CreateWaiterRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.PIN, validation.Required, validation.Match(pinRegex)),
	)
}

type ChangePINRequest struct {
	PIN string `json:"pin"`
}

func (req *ChangePINRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.PIN, validation.Required, validation.Match(pinRegex)),
	)
}

type SetActiveRequest struct {
	Active *bool `json:"active"`
}

func (req *SetActiveRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Active, validation.NotNil),
	)
}
