package controllers

import (
	"github.com/shashiranjanraj/supplydesk/app/services"
	"github.com/shashiranjanraj/supplydesk/pkg/ctx"
)

type RequestController struct {
	service *services.RequestService
}

func NewRequestController(service *services.RequestService) *RequestController {
	return &RequestController{service: service}
}

// Store submits a request for the signed-in caller. The write stands even
// when the notice fails; the receipt says so.
func (c *RequestController) Store(cx *ctx.Context) {
	var body services.SubmitInput
	if !cx.BindJSON(&body) {
		return
	}

	receipt, err := c.service.Submit(cx.Context(), cx.Identity(), body)
	if err != nil {
		fail(cx, err)
		return
	}
	cx.Created(receipt)
}

func (c *RequestController) Index(cx *ctx.Context) {
	reqs, err := c.service.List(cx.Context(), cx.Identity())
	if err != nil {
		fail(cx, err)
		return
	}
	cx.Success(reqs)
}

type statusBody struct {
	Status string `json:"status" validate:"required"`
}

func (c *RequestController) UpdateStatus(cx *ctx.Context) {
	id, ok := cx.ParamUint("id")
	if !ok {
		cx.NotFound("Request not found")
		return
	}
	var body statusBody
	if !cx.BindJSON(&body) {
		return
	}

	receipt, err := c.service.ChangeStatus(cx.Context(), cx.Identity(), id, body.Status)
	if err != nil {
		fail(cx, err)
		return
	}
	cx.Success(receipt)
}

func (c *RequestController) Destroy(cx *ctx.Context) {
	id, ok := cx.ParamUint("id")
	if !ok {
		cx.NotFound("Request not found")
		return
	}

	if err := c.service.Remove(cx.Context(), cx.Identity(), id); err != nil {
		fail(cx, err)
		return
	}
	cx.Success(map[string]uint{"deleted": id})
}

func (c *RequestController) Recipients(cx *ctx.Context) {
	emails, err := c.service.Recipients(cx.Context(), cx.Identity())
	if err != nil {
		fail(cx, err)
		return
	}
	cx.Success(emails)
}

type messageBody struct {
	Email   string `json:"email"   validate:"required,email"`
	Message string `json:"message" validate:"required,notblank,max=5000"`
}

// Message mails a free-text admin message to one requester.
func (c *RequestController) Message(cx *ctx.Context) {
	var body messageBody
	if !cx.BindJSON(&body) {
		return
	}

	if err := c.service.Broadcast(cx.Context(), cx.Identity(), body.Email, body.Message); err != nil {
		fail(cx, err)
		return
	}
	cx.Success(map[string]string{"sent_to": body.Email})
}
