package api

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/societyhq/societyd/internal/middleware"
	"github.com/societyhq/societyd/internal/models"
)

// ExportHandler streams an xlsx workbook of residents, transactions, and
// balances for the requested month range. Defaults to the current month.
func (s *Server) ExportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from := models.CurrentMonthKey()
		to := from
		var err error
		if q := c.Query("from"); q != "" {
			if from, err = models.ParseMonthKey(q); err != nil {
				return badRequest(c, err.Error())
			}
		}
		if q := c.Query("to"); q != "" {
			if to, err = models.ParseMonthKey(q); err != nil {
				return badRequest(c, err.Error())
			}
		}

		f, err := s.Exporter.Export(c.Context(), middleware.SocietyID(c), from, to)
		if err != nil {
			return fail(c, err)
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fail(c, err)
		}

		filename := fmt.Sprintf("Society_Data_Export_%s_to_%s.xlsx", from, to)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		return c.SendStream(bytes.NewReader(buf.Bytes()))
	}
}

// ImportHandler loads residents, balances, and transactions from an uploaded
// xlsx workbook.
func (s *Server) ImportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return badRequest(c, "multipart field \"file\" is required")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return badRequest(c, "failed to open uploaded file: "+err.Error())
		}
		defer file.Close()

		results, err := s.Importer.Import(c.Context(), middleware.SocietyID(c), file)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"results": results})
	}
}
