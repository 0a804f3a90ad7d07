package llm

import (
	"fmt"
	"strings"

	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

const imageAnalysisPrompt = `Based on established scientific research on egg morphology (shape index, ovality, etc.), analyze this egg image to predict the probable sex of the chick inside. Provide a detailed analysis explaining your reasoning and conclude with a clear prediction (Male or Female).`

const framePrompt = `You are an expert in poultry science and computer vision. Analyze this image of a chicken egg with high precision:
1. Identify and isolate the primary chicken egg from the background.
2. Determine its orientation and conceptually rotate it so the long axis is vertical with the broad, blunt end at the top.
3. On the aligned shape, evaluate shape index, ovality and the curvature of the narrow end.
4. Give your final prediction based on the correctly oriented egg.
Return a JSON object with your prediction ('Male', 'Female' or 'Unknown') and the analysis text explaining your reasoning from the morphological features.`

const alignmentPrompt = `You are checking a camera frame before an egg is analysed. Judge whether exactly one chicken egg is fully visible, centred, in focus and evenly lit, with its long axis roughly vertical.
Return a JSON object with a confidence from 0.0 (unusable) to 1.0 (ideal) and whether the frame is aligned.`

func measurementPrompt(m model.Measurement) string {
	return fmt.Sprintf("Given the following egg measurements: Mass=%gg, Long Axis=%gmm, Short Axis=%gmm. Predict the sex of the chick.",
		m.Mass, m.LongAxis, m.ShortAxis)
}

func simulationPrompt(m model.Measurement, f model.DerivedFeatures) string {
	var b strings.Builder
	b.WriteString("Simulate a RUSBoosted Trees classifier prediction for chick sex based on these egg metrics:\n")
	fmt.Fprintf(&b, "- Mass: %.2fg\n", m.Mass)
	fmt.Fprintf(&b, "- Long Axis: %.2fmm\n", m.LongAxis)
	fmt.Fprintf(&b, "- Short Axis: %.2fmm\n", m.ShortAxis)
	fmt.Fprintf(&b, "- Shape Index: %.4f\n", f.ShapeIndex)
	fmt.Fprintf(&b, "- Ovality: %.4f\n", f.Ovality)
	fmt.Fprintf(&b, "- Surface Area: %.2f cm²\n", f.SurfaceArea)
	fmt.Fprintf(&b, "- Volume: %.2f cm³\n", f.Volume)
	fmt.Fprintf(&b, "- Density: %.4f g/cm³\n\n", f.Density)
	b.WriteString("Based on the typical patterns found in poultry science research where these metrics are used, output your prediction. ")
	b.WriteString("Generally, rounder eggs (higher shape index) are associated with females.")
	return b.String()
}

func videoPrompt(topic string) string {
	return fmt.Sprintf(`You are a video analysis expert. A user has provided the title or topic of a video: %q. You have not actually seen the video. Based on this topic, provide a conceptual summary of what the video likely contains, its potential themes, and the key information a viewer might take away.`, topic)
}
