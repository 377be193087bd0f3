package monetdbe

// Extract decodes the cell at row of col. A null cell yields nil without
// touching the cell bytes. STR values are passed through text when it is not
// nil. row must lie within [0, col.Len()).
func Extract(col ResultColumn, row int, text TextFactory) (any, error) {
	desc, err := Describe(col.Type())
	if err != nil {
		return nil, err
	}
	if col.IsNull(row) {
		return nil, nil
	}

	cell := col.Cell(row)
	if desc.Convert == nil {
		return desc.raw(cell), nil
	}
	v, err := desc.Convert(cell)
	if err != nil {
		return nil, err
	}
	if text != nil && desc.Tag == TYPE_STR {
		return text(v.(string)), nil
	}
	return v, nil
}
