package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsplit/vsplit/internal/payment"
)

// memberShare returns one member's allocation breakdown.
func (s *Server) memberShare(c *gin.Context) {
	_, alloc, err := s.sessions.Share(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	memberID := c.Param("memberID")
	for _, share := range alloc.Shares {
		if share.MemberID == memberID {
			c.JSON(http.StatusOK, share)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
}

// memberQR renders a UPI payment QR for the member's share.
func (s *Server) memberQR(c *gin.Context) {
	sess, alloc, err := s.sessions.Share(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	payee, err := payment.Payee(sess)
	if err != nil {
		s.fail(c, err)
		return
	}

	memberID := c.Param("memberID")
	for _, share := range alloc.Shares {
		if share.MemberID != memberID {
			continue
		}
		note := "Bill split"
		if sess.Bill != nil && sess.Bill.RestaurantName != "" {
			note = fmt.Sprintf("%s - %s", sess.Bill.RestaurantName, share.Name)
		}
		png, err := payment.QRPNG(payment.Request{
			PayeeVPA:  payee.UPIID,
			PayeeName: payee.Name,
			Amount:    share.Total,
			Note:      note,
		}, 256)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
}

// exportXLSX streams the settlement workbook.
func (s *Server) exportXLSX(c *gin.Context) {
	sess, alloc, err := s.sessions.Share(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := s.exporter.SettlementXLSX(sess, alloc)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=settlement-%s.xlsx", sess.ID))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", out)
}
