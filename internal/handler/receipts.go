package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/lo"
	"github.com/valyala/fasthttp"

	ierr "pajak-engine/internal/errors"
	"pajak-engine/internal/export"
	"pajak-engine/internal/model"
	"pajak-engine/internal/receipt"
)

const receiptCalculationID = "receipt"

// createReceipt calculates the submitted input and stores the result, so a
// stored breakdown always comes from the engine.
func (h *Handler) createReceipt(ctx *fasthttp.RequestCtx) {
	var req model.ReceiptRequest
	if err := h.decode(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}

	resp := h.engine.Process(ctx, &model.CalculationRequest{
		Calculations: []model.Calculation{{
			CalculationID: receiptCalculationID,
			TaxType:       req.TaxType,
			Input:         req.Input,
		}},
	})
	if resp.CalculationMetadata.CalculationOutcome != model.OutcomeSuccess {
		msgs := lo.FilterMap(resp.CalculationResult.Messages, func(m model.CalculationMessage, _ int) (string, bool) {
			return m.Message, m.Level == model.LevelCritical
		})
		h.writeError(ctx, ierr.Newf(ierr.ErrValidation, "handler.createReceipt", "%s", strings.Join(msgs, "; ")))
		return
	}

	rec, err := h.store.Add(receipt.FromCalculation(req, resp.CalculationResult.Calculations[0]))
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	h.metrics.SetReceiptsStored(h.store.Len())
	h.log.Infow("receipt stored", "receipt_id", rec.ID, "type", rec.Type, "total_tax", rec.Summary.TotalTax)
	h.writeJSON(ctx, http.StatusCreated, rec)
}

func (h *Handler) listReceipts(ctx *fasthttp.RequestCtx) {
	h.writeJSON(ctx, http.StatusOK, h.store.List())
}

func (h *Handler) getReceipt(ctx *fasthttp.RequestCtx, id string) {
	rec, err := h.store.Get(id)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	h.writeJSON(ctx, http.StatusOK, rec)
}

func (h *Handler) deleteReceipt(ctx *fasthttp.RequestCtx, id string) {
	if err := h.store.Remove(id); err != nil {
		h.writeError(ctx, err)
		return
	}
	h.metrics.SetReceiptsStored(h.store.Len())
	ctx.SetStatusCode(http.StatusNoContent)
}

func (h *Handler) exportReceipt(ctx *fasthttp.RequestCtx, id string) {
	rec, err := h.store.Get(id)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	locale := string(ctx.QueryArgs().Peek("locale"))
	var file export.File
	switch format := string(ctx.QueryArgs().Peek("format")); format {
	case "", "xls":
		file, err = h.exporter.Workbook(locale, rec)
	case "html":
		file, err = h.exporter.PrintHTML(locale, rec)
	default:
		err = ierr.Newf(ierr.ErrValidation, "handler.exportReceipt", "unsupported export format %q", format)
	}
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeFile(ctx, file)
}

func (h *Handler) diffReceipts(ctx *fasthttp.RequestCtx, a, b string) {
	diff, err := h.store.Diff(a, b)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	h.writeJSON(ctx, http.StatusOK, diff)
}

func (h *Handler) createBatch(ctx *fasthttp.RequestCtx) {
	var draft model.Batch
	if err := h.decode(ctx, &draft); err != nil {
		h.writeError(ctx, err)
		return
	}
	batch, err := h.store.AddBatch(draft)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	h.writeJSON(ctx, http.StatusCreated, batch)
}

func (h *Handler) getBatch(ctx *fasthttp.RequestCtx, id string) {
	batch, err := h.store.GetBatch(id)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	h.writeJSON(ctx, http.StatusOK, batch)
}

func (h *Handler) exportBatch(ctx *fasthttp.RequestCtx, id string) {
	batch, receipts, err := h.store.BatchReceipts(id)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	file, err := h.exporter.BatchWorkbook(string(ctx.QueryArgs().Peek("locale")), batch, receipts)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeFile(ctx, file)
}

func writeFile(ctx *fasthttp.RequestCtx, f export.File) {
	disposition := lo.Ternary(f.ContentType == export.ContentTypeHTML, "inline", "attachment")
	ctx.Response.Header.Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, f.Name))
	ctx.SetContentType(f.ContentType)
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBody(f.Body)
}
