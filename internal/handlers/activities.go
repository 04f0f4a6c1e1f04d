package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"Tracker/internal/auth"
	dom "Tracker/internal/domain"
	"Tracker/internal/dto"
	"Tracker/internal/listing"
	"Tracker/internal/utils"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	base
}

func NewActivityHandler(d Deps) *ActivityHandler {
	return &ActivityHandler{base{d}}
}

// Home godoc
// @Summary      Redirect to the first page of activities
// @Tags         activities
// @Success      302
// @Router       / [get]
func (h *ActivityHandler) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, homePath)
}

// List godoc
// @Summary      Show one page of the account's activities
// @Tags         activities
// @Produce      html
// @Security     CookieAuth
// @Param        pageNum  path  int  true  "Page number, from 1"
// @Success      200
// @Failure      404
// @Router       /activities/page/{pageNum} [get]
func (h *ActivityHandler) List(c *gin.Context) {
	rs := auth.StateFromContext(c)
	gw := h.Gateways.For(rs)
	sort := rs.Session.Sort.Normalize()

	list, err := gw.LoadSortedActivities(c.Request.Context(), sort)
	if err != nil {
		h.fail(c, err)
		return
	}
	page, err := listing.RequirePage(c.Param("pageNum"), len(list))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.render(c, http.StatusOK, "activities.html", rs, gin.H{
		"Activities":    listing.Page(list, page),
		"CurrentPage":   page,
		"Pages":         listing.PageNumbers(listing.NumberOfPages(len(list))),
		"SortColumn":    sort.Column,
		"SortDirection": sort.Direction(),
	})
}

// NewForm godoc
// @Summary      Show the add activity form
// @Tags         activities
// @Produce      html
// @Security     CookieAuth
// @Success      200
// @Router       /activity/new [get]
func (h *ActivityHandler) NewForm(c *gin.Context) {
	h.render(c, http.StatusOK, "add-activity.html", auth.StateFromContext(c), gin.H{"Form": dto.ActivityForm{}})
}

// Create godoc
// @Summary      Add an activity
// @Tags         activities
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Security     CookieAuth
// @Param        title            formData  string  true  "Title"
// @Param        category         formData  string  true  "Category"
// @Param        date             formData  string  true  "Date completed, YYYY-MM-DD"
// @Param        min_to_complete  formData  string  true  "Minutes to complete"
// @Success      302
// @Failure      400
// @Failure      404
// @Router       /activity/new [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	rs := auth.StateFromContext(c)
	var form dto.ActivityForm
	msgs, err := bindForm(c, &form)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(msgs) > 0 {
		flashErrors(rs, msgs)
		h.render(c, http.StatusBadRequest, "add-activity.html", rs, gin.H{"Form": form})
		return
	}

	added, err := h.Gateways.For(rs).AddActivity(c.Request.Context(), form.Input())
	if err != nil {
		h.fail(c, err)
		return
	}
	if !added {
		h.fail(c, errors.New("activity was not added"))
		return
	}
	rs.Session.AddFlash(auth.FlashSuccess, "The activity has been added.")
	h.redirect(c, rs, homePath)
}

// EditForm godoc
// @Summary      Show the edit form of an activity
// @Tags         activities
// @Produce      html
// @Security     CookieAuth
// @Param        activityId  path  int  true  "Activity ID"
// @Success      200
// @Failure      404
// @Router       /activities/edit/{activityId} [get]
func (h *ActivityHandler) EditForm(c *gin.Context) {
	rs := auth.StateFromContext(c)
	id, ok := utils.ParseID(c.Param("activityId"))
	if !ok {
		h.fail(c, ErrActivityNotFound)
		return
	}
	gw := h.Gateways.For(rs)
	ctx := c.Request.Context()

	valid, err := gw.CheckIsValidActivity(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !valid {
		h.fail(c, ErrActivityNotFound)
		return
	}
	a, err := gw.GetActivity(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "edit-activity.html", rs, gin.H{
		"ActivityID": id,
		"Form":       formOf(dom.InputOf(a)),
	})
}

// Update godoc
// @Summary      Change an activity
// @Tags         activities
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Security     CookieAuth
// @Param        activityId       path      int     true  "Activity ID"
// @Param        title            formData  string  true  "Title"
// @Param        category         formData  string  true  "Category"
// @Param        date             formData  string  true  "Date completed, YYYY-MM-DD"
// @Param        min_to_complete  formData  string  true  "Minutes to complete"
// @Success      302
// @Failure      400
// @Failure      404
// @Router       /activities/edit/{activityId} [post]
func (h *ActivityHandler) Update(c *gin.Context) {
	rs := auth.StateFromContext(c)
	id, ok := utils.ParseID(c.Param("activityId"))
	if !ok {
		h.fail(c, ErrActivityNotFound)
		return
	}
	var form dto.ActivityForm
	msgs, err := bindForm(c, &form)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(msgs) > 0 {
		flashErrors(rs, msgs)
		h.render(c, http.StatusBadRequest, "edit-activity.html", rs, gin.H{"ActivityID": id, "Form": form})
		return
	}

	gw := h.Gateways.For(rs)
	ctx := c.Request.Context()
	in := form.Input()

	valid, err := gw.CheckIsValidActivity(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !valid {
		h.fail(c, ErrActivityNotFound)
		return
	}
	same, err := gw.IsSameActivity(ctx, in, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if same {
		rs.Session.AddFlash(auth.FlashInfo, msgNoEdits)
		h.redirect(c, rs, homePath)
		return
	}

	changed, err := gw.EditActivity(ctx, in, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !changed {
		h.fail(c, ErrActivityNotFound)
		return
	}
	rs.Session.AddFlash(auth.FlashSuccess, "The activity has been changed.")
	h.redirect(c, rs, homePath)
}

// Delete godoc
// @Summary      Delete an activity
// @Tags         activities
// @Security     CookieAuth
// @Param        activityId  path  int  true  "Activity ID"
// @Success      302
// @Failure      404
// @Router       /activity/delete/{activityId} [post]
func (h *ActivityHandler) Delete(c *gin.Context) {
	rs := auth.StateFromContext(c)
	id, ok := utils.ParseID(c.Param("activityId"))
	if !ok {
		h.fail(c, ErrActivityNotFound)
		return
	}
	deleted, err := h.Gateways.For(rs).DeleteActivity(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !deleted {
		h.fail(c, ErrActivityNotFound)
		return
	}
	rs.Session.AddFlash(auth.FlashSuccess, "The activity has been successfully deleted")
	h.redirect(c, rs, homePath)
}

// Sort godoc
// @Summary      Sort the list by a column
// @Description  Sorting by the current column flips the direction; any other column starts ascending.
// @Tags         activities
// @Security     CookieAuth
// @Param        column   path  string  true  "title, category, date_completed or min_to_complete"
// @Param        pageNum  path  int     true  "Page to return to"
// @Success      302
// @Failure      404
// @Router       /sort/{column}/{pageNum} [get]
func (h *ActivityHandler) Sort(c *gin.Context) {
	rs := auth.StateFromContext(c)
	col, err := listing.ParseColumn(c.Param("column"))
	if err != nil {
		h.fail(c, err)
		return
	}
	count, err := h.Gateways.For(rs).GetActivityCount(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	page, err := listing.RequirePage(c.Param("pageNum"), count)
	if err != nil {
		h.fail(c, err)
		return
	}
	rs.Session.Sort = rs.Session.Sort.Toggle(col)
	h.redirect(c, rs, fmt.Sprintf("/activities/page/%d", page))
}

func formOf(in dom.ActivityInput) dto.ActivityForm {
	return dto.ActivityForm{
		Title:         in.Title,
		Category:      in.Category,
		Date:          in.Date,
		MinToComplete: in.MinToComplete,
	}
}
