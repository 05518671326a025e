package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/juank27/alegra-api/internal"
	"github.com/juank27/alegra-api/internal/alegra"
)

// InvoiceAPI is the slice of the remote service the pipeline needs.
type InvoiceAPI interface {
	FindSupportTemplate(ctx context.Context) (internal.NumberTemplate, error)
	CreateBill(ctx context.Context, bill internal.Bill) (int, error)
}

// SubmitBatch sends bills one at a time, in order. A failed bill is
// recorded and the next one is still attempted; the returned list is
// empty on full success.
func SubmitBatch(ctx context.Context, api InvoiceAPI, bills []internal.Bill, logger *slog.Logger) []internal.BatchError {
	batchErrs := []internal.BatchError{}
	for _, bill := range bills {
		remoteID, err := api.CreateBill(ctx, bill)
		if err != nil {
			batchErrs = append(batchErrs, toBatchError(bill, err))
			logger.Error("bill submission failed", "externalId", bill.ExternalID, "error", err)
			continue
		}
		logger.Info("bill submitted", "externalId", bill.ExternalID, "remoteId", remoteID)
	}
	return batchErrs
}

func toBatchError(bill internal.Bill, err error) internal.BatchError {
	batchErr := internal.BatchError{ExternalID: bill.ExternalID, Message: err.Error()}
	var submitErr *alegra.SubmitError
	if errors.As(err, &submitErr) {
		batchErr.Message = submitErr.Message
		batchErr.RemoteDocumentID = submitErr.RemoteID
	}
	return batchErr
}
