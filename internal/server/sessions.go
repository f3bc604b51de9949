package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vsplit/vsplit/internal/entity"
	session "github.com/vsplit/vsplit/internal/services/session"
)

type createSessionRequest struct {
	Sample bool         `json:"sample"`
	Bill   *entity.Bill `json:"bill"`
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	bill := req.Bill
	if req.Sample || bill == nil {
		// Clients that have not scanned anything yet start from the sample
		// bill; a real scan replaces it wholesale via the receipt route.
		bill = session.SampleBill()
	}
	created, err := s.sessions.Create(c.Request.Context(), bill)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getSession(c *gin.Context) {
	got, err := s.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, got)
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type memberRequest struct {
	Name  string `json:"name"`
	UPIID string `json:"upiId"`
}

func (s *Server) addMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	updated, err := s.sessions.AddMember(c.Request.Context(), c.Param("id"),
		session.MemberRequest{Name: req.Name, UPIID: req.UPIID})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, updated)
}

func (s *Server) removeMember(c *gin.Context) {
	updated, err := s.sessions.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("memberID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) toggleSelection(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item id must be an integer"})
		return
	}
	updated, err := s.sessions.ToggleSelection(c.Request.Context(), c.Param("id"), c.Param("memberID"), itemID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) togglePayment(c *gin.Context) {
	updated, err := s.sessions.TogglePayment(c.Request.Context(), c.Param("id"), c.Param("memberID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) summary(c *gin.Context) {
	sum, err := s.sessions.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) history(c *gin.Context) {
	limit := 50
	if q := c.Query("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	recs, err := s.sessions.History(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}
