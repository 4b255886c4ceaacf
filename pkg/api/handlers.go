package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridetracker/pkg/apperr"
	"ridetracker/pkg/earnings"
	"ridetracker/pkg/logger"
	"ridetracker/pkg/models"
	"ridetracker/pkg/report"
)

func (s *Server) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request error", logger.String("path", c.FullPath()), logger.Error(err))
	}
	c.JSON(status, gin.H{"error": apperr.Message(err), "kind": apperr.KindOf(err)})
}

// day parses a YYYY-MM-DD value in the service zone. Empty means today.
func (s *Server) day(value string) (time.Time, error) {
	if value == "" {
		return s.now().In(s.loc), nil
	}
	t, err := time.ParseInLocation(earnings.DateLayout, value, s.loc)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date %q, want YYYY-MM-DD", value)
	}
	return t, nil
}

// rangeOf reads from/to query dates as whole local days. Missing bounds
// default to today.
func (s *Server) rangeOf(c *gin.Context) (time.Time, time.Time, error) {
	from, err := s.day(c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := s.day(c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, _ := earnings.DayBounds(from)
	_, end := earnings.DayBounds(to)
	return start, end, nil
}

func (s *Server) platformParam(c *gin.Context) (models.Platform, error) {
	p, ok := models.ParsePlatform(c.Param("platform"))
	if !ok {
		return "", apperr.Validation("unknown platform %q", c.Param("platform"))
	}
	return p, nil
}

func (s *Server) getSummary(c *gin.Context) {
	day, err := s.day(c.Query("date"))
	if err != nil {
		s.fail(c, err)
		return
	}
	summary, err := s.svc.Ride().GetDailySummary(c.Request.Context(), userID(c), day)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) listRides(c *gin.Context) {
	from, to, err := s.rangeOf(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	rides, err := s.svc.Ride().ListRides(c.Request.Context(), userID(c), from, to)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rides)
}

func (s *Server) addRide(c *gin.Context) {
	var in models.RideInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, apperr.Validation("invalid ride payload"))
		return
	}
	ride, summary, err := s.svc.Ride().AddRide(c.Request.Context(), userID(c), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ride": ride, "summary": summary})
}

func (s *Server) listExpenses(c *gin.Context) {
	from, to, err := s.rangeOf(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	expenses, err := s.svc.Expense().ListExpenses(c.Request.Context(), userID(c), from, to)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (s *Server) getExpense(c *gin.Context) {
	day, err := s.day(c.Param("date"))
	if err != nil {
		s.fail(c, err)
		return
	}
	expense, err := s.svc.Expense().GetExpense(c.Request.Context(), userID(c), day)
	if err != nil {
		s.fail(c, err)
		return
	}
	if expense == nil {
		s.fail(c, apperr.NotFound("no expenses recorded for %s", c.Param("date")))
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (s *Server) putExpense(c *gin.Context) {
	day, err := s.day(c.Param("date"))
	if err != nil {
		s.fail(c, err)
		return
	}
	var in models.ExpenseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, apperr.Validation("invalid expense payload"))
		return
	}
	expense, summary, err := s.svc.Expense().AddExpense(c.Request.Context(), userID(c), day, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": expense, "summary": summary})
}

func (s *Server) getOnline(c *gin.Context) {
	state, err := s.svc.Session().Current(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) toggleOnline(c *gin.Context) {
	state, err := s.svc.Session().Toggle(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) endSession(c *gin.Context) {
	session, err := s.svc.Session().End(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) getRanking(c *gin.Context) {
	day, err := s.day(c.Query("date"))
	if err != nil {
		s.fail(c, err)
		return
	}

	city := c.Query("city")
	var entries []models.RankingEntry
	if city == "" {
		city, entries, err = s.svc.Ranking().ForUser(c.Request.Context(), userID(c), day)
	} else {
		entries, err = s.svc.Ranking().Daily(c.Request.Context(), city, day)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"city": city, "date": day.Format(earnings.DateLayout), "entries": entries})
}

func (s *Server) platformStatus(c *gin.Context) {
	status, err := s.svc.Platform().Status(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) connectPlatform(c *gin.Context) {
	p, err := s.platformParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	authURL, err := s.svc.Platform().Connect(c.Request.Context(), userID(c), p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_url": authURL})
}

func (s *Server) uberCallback(c *gin.Context) {
	if msg := c.Query("error"); msg != "" {
		s.fail(c, apperr.Validation("authorization denied: %s", msg))
		return
	}
	uid, err := s.svc.Platform().CompleteOAuth(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true, "platform": models.PlatformUber, "user_id": uid})
}

func (s *Server) syncPlatform(c *gin.Context) {
	p, err := s.platformParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	from, to, err := s.rangeOf(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.svc.Platform().Sync(c.Request.Context(), userID(c), p, from, to)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) syncAll(c *gin.Context) {
	from, to, err := s.rangeOf(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	results, err := s.svc.Platform().SyncAll(c.Request.Context(), userID(c), from, to)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) disconnectPlatform(c *gin.Context) {
	p, err := s.platformParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.svc.Platform().Disconnect(c.Request.Context(), userID(c), p); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) dayReport(c *gin.Context) (models.DailySummary, []*models.Ride, bool) {
	day, err := s.day(c.Query("date"))
	if err != nil {
		s.fail(c, err)
		return models.DailySummary{}, nil, false
	}
	summary, rides, err := s.svc.Ride().DayReport(c.Request.Context(), userID(c), day)
	if err != nil {
		s.fail(c, err)
		return models.DailySummary{}, nil, false
	}
	return summary, rides, true
}

func (s *Server) exportRidesCSV(c *gin.Context) {
	summary, rides, ok := s.dayReport(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteRidesCSV(&buf, rides); err != nil {
		s.fail(c, err)
		return
	}
	s.attachment(c, report.Filename("corridas", summary.Date, "csv"), "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) exportSummaryCSV(c *gin.Context) {
	summary, _, ok := s.dayReport(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteSummaryCSV(&buf, summary); err != nil {
		s.fail(c, err)
		return
	}
	s.attachment(c, report.Filename("resumo", summary.Date, "csv"), "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) exportReportCSV(c *gin.Context) {
	summary, rides, ok := s.dayReport(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCompleteReport(&buf, summary, rides); err != nil {
		s.fail(c, err)
		return
	}
	s.attachment(c, report.Filename("relatorio_completo", summary.Date, "csv"), "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) exportReportXLSX(c *gin.Context) {
	summary, rides, ok := s.dayReport(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, summary, rides); err != nil {
		s.fail(c, err)
		return
	}
	s.attachment(c, report.Filename("relatorio_completo", summary.Date, "xlsx"),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (s *Server) attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}
