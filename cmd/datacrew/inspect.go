package datacrew

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/viant/afs"
	"github.com/viant/datacrew/internal/dataframe"
)

// InspectCmd loads a dataset without calling the model.
type InspectCmd struct {
	Data string `short:"d" long:"data" description:"dataset path or URL (csv, xlsx, json)" required:"true"`

	out io.Writer
}

func (i *InspectCmd) Execute(_ []string) error {
	frame, err := dataframe.Read(context.Background(), afs.New(), i.Data)
	if err != nil {
		return fmt.Errorf("error loading dataset: %w", err)
	}
	data, err := json.MarshalIndent(frame.Info(), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(i.out, string(data))
	return err
}
