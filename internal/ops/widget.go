package ops

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/hpungsan/tagdrop/internal/db"
	"github.com/hpungsan/tagdrop/internal/dropdown"
	"github.com/hpungsan/tagdrop/internal/errors"
)

// WidgetOutput is a stored widget with decoded settings.
type WidgetOutput struct {
	ID        string           `json:"id"`
	Number    int64            `json:"number"`
	Options   dropdown.Options `json:"options"`
	CreatedAt int64            `json:"created_at"`
	UpdatedAt int64            `json:"updated_at"`
}

func widgetOutput(w *db.Widget) (*WidgetOutput, error) {
	opts, err := decodeSettings(w.Settings)
	if err != nil {
		return nil, err
	}
	return &WidgetOutput{
		ID:        w.ID,
		Number:    w.Number,
		Options:   opts,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}, nil
}

// decodeSettings reads stored settings over the defaults so fields missing
// from older rows still hold valid values.
func decodeSettings(data json.RawMessage) (dropdown.Options, error) {
	opts := dropdown.Defaults()
	if len(data) == 0 {
		return opts, nil
	}
	if err := json.Unmarshal(data, &opts); err != nil {
		return dropdown.Options{}, errors.NewInternal(err)
	}
	if opts.IncExcIDs == nil {
		opts.IncExcIDs = []int64{}
	}
	return opts, nil
}

// SaveWidgetInput contains parameters for the SaveWidget operation.
type SaveWidgetInput struct {
	ID       string         // update by id
	Number   int64          // update, or create with this number
	Settings map[string]any // raw settings; sanitized before storage
}

// SaveWidgetOutput contains the result of the SaveWidget operation.
type SaveWidgetOutput struct {
	Widget  WidgetOutput `json:"widget"`
	Created bool         `json:"created"`
}

// SaveWidget creates or updates a widget. With an id the widget must exist;
// with a number an existing widget is updated and a missing one created;
// with neither a widget is created with the next free number. Settings
// replace the stored ones after sanitizing.
func SaveWidget(ctx context.Context, database *sql.DB, svc *dropdown.Service, input SaveWidgetInput) (*SaveWidgetOutput, error) {
	if input.ID != "" && input.Number != 0 {
		return nil, errors.NewAmbiguousAddressing("specify either id or number, not both")
	}
	if input.Number < 0 {
		return nil, errors.NewInvalidRequest("number must be positive")
	}

	opts := svc.Widget().Update(ctx, input.Settings)
	settings, err := json.Marshal(opts)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var existing *db.Widget
	switch {
	case input.ID != "":
		existing, err = db.GetWidgetByID(ctx, database, input.ID)
		if err != nil {
			return nil, err
		}
	case input.Number > 0:
		existing, err = db.GetWidgetByNumber(ctx, database, input.Number)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
	}

	if existing != nil {
		existing.Settings = settings
		if err := db.UpdateWidgetSettings(ctx, database, existing); err != nil {
			return nil, err
		}
		out, err := widgetOutput(existing)
		if err != nil {
			return nil, err
		}
		return &SaveWidgetOutput{Widget: *out}, nil
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	w := &db.Widget{ID: id, Number: input.Number, Settings: settings}
	if err := db.InsertWidget(ctx, database, w); err != nil {
		return nil, err
	}
	out, err := widgetOutput(w)
	if err != nil {
		return nil, err
	}
	return &SaveWidgetOutput{Widget: *out, Created: true}, nil
}

// FetchWidgetInput contains parameters for the FetchWidget operation.
type FetchWidgetInput struct {
	ID     string
	Number int64
}

// FetchWidget retrieves a widget by id or number.
func FetchWidget(ctx context.Context, database *sql.DB, input FetchWidgetInput) (*WidgetOutput, error) {
	w, err := resolveWidget(ctx, database, input.ID, input.Number)
	if err != nil {
		return nil, err
	}
	return widgetOutput(w)
}

func resolveWidget(ctx context.Context, database *sql.DB, id string, number int64) (*db.Widget, error) {
	addr, err := ValidateWidgetAddress(id, number)
	if err != nil {
		return nil, err
	}
	if addr.ByID {
		return db.GetWidgetByID(ctx, database, addr.ID)
	}
	return db.GetWidgetByNumber(ctx, database, addr.Number)
}

// ListWidgetsInput contains parameters for the ListWidgets operation.
type ListWidgetsInput struct {
	Limit  int // default: 20, max: 100
	Offset int
}

// ListWidgetsOutput contains the result of the ListWidgets operation.
type ListWidgetsOutput struct {
	Items      []WidgetOutput `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

// ListWidgets lists widgets ordered by number.
func ListWidgets(ctx context.Context, database *sql.DB, input ListWidgetsInput) (*ListWidgetsOutput, error) {
	limit, offset := clampLimit(input.Limit, input.Offset)

	rows, total, err := db.ListWidgets(ctx, database, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]WidgetOutput, 0, len(rows))
	for i := range rows {
		out, err := widgetOutput(&rows[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *out)
	}

	return &ListWidgetsOutput{
		Items:      items,
		Pagination: newPagination(limit, offset, len(items), total),
	}, nil
}

// DeleteWidgetInput contains parameters for the DeleteWidget operation.
type DeleteWidgetInput struct {
	ID     string
	Number int64
}

// DeleteWidgetOutput contains the result of the DeleteWidget operation.
type DeleteWidgetOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DeleteWidget removes a widget.
func DeleteWidget(ctx context.Context, database *sql.DB, input DeleteWidgetInput) (*DeleteWidgetOutput, error) {
	w, err := resolveWidget(ctx, database, input.ID, input.Number)
	if err != nil {
		return nil, err
	}
	if err := db.DeleteWidget(ctx, database, w.ID); err != nil {
		return nil, err
	}
	return &DeleteWidgetOutput{Deleted: true, ID: w.ID}, nil
}

// DisplayWidgetInput contains parameters for the DisplayWidget operation.
type DisplayWidgetInput struct {
	ID     string
	Number int64
	Args   *dropdown.WidgetArgs // default: dropdown.DefaultWidgetArgs()
}

// DisplayWidgetOutput contains the result of the DisplayWidget operation.
type DisplayWidgetOutput struct {
	Number int64  `json:"number"`
	Markup string `json:"markup"`
	// Empty is set when the widget has no terms to show and renders nothing.
	Empty bool `json:"empty"`
}

// DisplayWidget renders a stored widget with its sidebar wrapper.
func DisplayWidget(ctx context.Context, database *sql.DB, svc *dropdown.Service, input DisplayWidgetInput) (*DisplayWidgetOutput, error) {
	w, err := resolveWidget(ctx, database, input.ID, input.Number)
	if err != nil {
		return nil, err
	}
	opts, err := decodeSettings(w.Settings)
	if err != nil {
		return nil, err
	}

	args := dropdown.DefaultWidgetArgs()
	if input.Args != nil {
		args = *input.Args
	}

	markup := svc.Widget().Display(ctx, args, w.Number, opts)
	return &DisplayWidgetOutput{Number: w.Number, Markup: markup, Empty: markup == ""}, nil
}
