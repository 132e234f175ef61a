package transformer

import (
	"errors"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

var defaultAttentionOutputs = []string{"attentions"}

type attentionSession struct {
	session *ort.DynamicAdvancedSession
	outputs []string
}

func newAttentionSession(modelPath string, outputs []string, libraryPath string) (*attentionSession, error) {
	if len(outputs) == 0 {
		outputs = defaultAttentionOutputs
	}
	if !ort.IsInitialized() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{"input_ids", "attention_mask"}, outputs, nil)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	return &attentionSession{session: session, outputs: outputs}, nil
}

// run returns attention as [layer][head][seq][seq] for one sequence.
func (a *attentionSession) run(ids []int64) ([][][][]float64, error) {
	if len(ids) == 0 {
		return nil, errors.New("no tokens to attend over")
	}
	shape := ort.NewShape(1, int64(len(ids)))

	mask := make([]int64, len(ids))
	for i := range mask {
		mask[i] = 1
	}

	idsTensor, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("allocate input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("allocate attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	outputs := make([]ort.Value, len(a.outputs))
	if err := a.session.Run([]ort.Value{idsTensor, maskTensor}, outputs); err != nil {
		return nil, fmt.Errorf("run attention graph: %w", err)
	}
	defer func() {
		for _, v := range outputs {
			if v != nil {
				v.Destroy()
			}
		}
	}()

	var layers [][][][]float64
	for i, v := range outputs {
		tensor, ok := v.(*ort.Tensor[float32])
		if !ok {
			return nil, fmt.Errorf("output %s is not a float32 tensor", a.outputs[i])
		}
		out, err := toLayers(tensor.GetData(), tensor.GetShape())
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", a.outputs[i], err)
		}
		layers = append(layers, out...)
	}
	return layers, nil
}

func (a *attentionSession) destroy() error {
	return a.session.Destroy()
}

// toLayers reshapes a flat attention tensor. Rank 4 is one layer shaped
// [batch, heads, seq, seq]; rank 5 stacks layers first. Only batch 0 is kept.
func toLayers(data []float32, shape []int64) ([][][][]float64, error) {
	var numLayers, batch, heads, rows, cols int
	switch len(shape) {
	case 4:
		numLayers, batch, heads, rows, cols = 1, int(shape[0]), int(shape[1]), int(shape[2]), int(shape[3])
	case 5:
		numLayers, batch, heads, rows, cols = int(shape[0]), int(shape[1]), int(shape[2]), int(shape[3]), int(shape[4])
	default:
		return nil, fmt.Errorf("unexpected attention rank %d", len(shape))
	}
	if batch < 1 || rows != cols {
		return nil, fmt.Errorf("unexpected attention shape %v", shape)
	}
	if want := numLayers * batch * heads * rows * cols; len(data) != want {
		return nil, fmt.Errorf("attention data has %d values, shape %v needs %d", len(data), shape, want)
	}

	layerStride := batch * heads * rows * cols
	layers := make([][][][]float64, numLayers)
	for l := range layers {
		layers[l] = make([][][]float64, heads)
		for h := range layers[l] {
			head := make([][]float64, rows)
			for r := range head {
				offset := l*layerStride + (h*rows+r)*cols
				row := make([]float64, cols)
				for c := range row {
					row[c] = float64(data[offset+c])
				}
				head[r] = row
			}
			layers[l][h] = head
		}
	}
	return layers, nil
}
