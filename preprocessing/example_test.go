package preprocessing_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/surrogo/core/frame"
	"github.com/ezoic/surrogo/preprocessing"
)

// ExampleStandardScaler demonstrates basic usage of StandardScaler
func ExampleStandardScaler() {
	X := mat.NewDense(4, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
		7, 8,
	})

	scaler := preprocessing.NewStandardScaler(true, true)
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		return
	}

	fmt.Printf("Scaled first row: [%.2f, %.2f]\n", scaled.At(0, 0), scaled.At(0, 1))

	// Output: Scaled first row: [-1.34, -1.34]
}

// ExampleStandardScaler_inverseTransform shows the round trip used for targets.
func ExampleStandardScaler_inverseTransform() {
	y := mat.NewDense(3, 1, []float64{10, 20, 30})

	scaler := preprocessing.NewTargetStandardizer()
	scaled, _ := scaler.FitTransform(y)
	back, _ := scaler.InverseTransform(scaled)

	fmt.Printf("scaled: %.1f %.1f %.1f\n", scaled.At(0, 0), scaled.At(1, 0), scaled.At(2, 0))
	fmt.Printf("restored: %.1f %.1f %.1f\n", back.At(0, 0), back.At(1, 0), back.At(2, 0))

	// Output: scaled: -1.0 0.0 1.0
	// restored: 10.0 20.0 30.0
}

// ExampleMinMaxScaler_FitBounds scales against declared bounds.
func ExampleMinMaxScaler_FitBounds() {
	scaler := preprocessing.NewMinMaxScalerDefault()
	if err := scaler.FitBounds([]float64{0}, []float64{10}); err != nil {
		return
	}
	out, _ := scaler.Transform(mat.NewDense(1, 1, []float64{5}))
	fmt.Printf("%.1f\n", out.At(0, 0))

	// Output: 0.5
}

// ExampleColumnTransformer scales one column and passes another through.
func ExampleColumnTransformer() {
	bounds, _ := frame.NewNumeric([]string{"Temp", "Task"}, [][]float64{{0, 0}, {100, 1}})

	ct := preprocessing.NewColumnTransformer(
		preprocessing.ColumnGroup{Name: "Temp", Columns: []string{"Temp"}, Scaler: preprocessing.NewMinMaxScalerDefault()},
		preprocessing.ColumnGroup{Name: "Task", Columns: []string{"Task"}},
	)
	if err := ct.Fit(bounds); err != nil {
		return
	}

	df, _ := frame.NewNumeric([]string{"Temp", "Task"}, [][]float64{{25, 1}})
	out, _ := ct.Transform(df)
	fmt.Println(ct.GetFeatureNamesOut(), out.At(0, 0), out.At(0, 1))

	// Output: [Temp Task] 0.25 1
}

// ExampleOneHotEncoder encodes a categorical column.
func ExampleOneHotEncoder() {
	encoder, _ := preprocessing.NewOneHotEncoderWithCategories([]string{"water", "ethanol"})
	out, _ := encoder.Transform([][]string{{"ethanol"}})

	fmt.Println(encoder.GetFeatureNamesOut([]string{"Solvent"}))
	fmt.Println(out.At(0, 0), out.At(0, 1))

	// Output: [Solvent_water Solvent_ethanol]
	// 0 1
}
