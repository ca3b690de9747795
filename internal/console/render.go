package console

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/Renal37/fuel-orders/internal/models"
	"github.com/Renal37/fuel-orders/internal/utils"
)

const timeLayout = "2006-01-02 15:04"

func formatTime(ts utils.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format(timeLayout)
}

func nextAction(status models.OrderStatus) string {
	next, ok := status.Next()
	if !ok {
		return "-"
	}
	return "mark " + string(next)
}

// renderPage prints the orders of page as a table with 1-based row numbers.
func renderPage(out io.Writer, page *models.Page[models.Order]) error {
	if page == nil || len(page.Content) == 0 {
		_, err := fmt.Fprintln(out, "No orders found.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "#\tID\tTAIL\tAIRPORT\tVOLUME\tWINDOW START\tWINDOW END\tSTATUS\tNEXT")
	for i, order := range page.Content {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			order.ID,
			order.TailNumber,
			order.AirportIcao,
			strconv.FormatFloat(order.RequestedFuelVolume, 'f', -1, 64),
			formatTime(order.DeliveryWindowStart),
			formatTime(order.DeliveryWindowEnd),
			order.Status,
			nextAction(order.Status),
		)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "Page %d of %d (%d orders)\n", page.Page+1, max(page.TotalPages, 1), page.TotalElements)
	return err
}
