package analyzer

import "fmt"

const systemPrompt = "You are an expert career coach and resume analyst. Provide constructive, encouraging feedback " +
	"that helps candidates present their best selves. Always maintain a positive, professional tone."

const userPromptTemplate = `Analyze the following resume and provide a comprehensive assessment. Respond ONLY with a valid JSON object (no markdown, no code blocks) with the following structure:

{
  "summary": "A 2-3 sentence professional summary of the candidate's background",
  "strengths": ["strength1", "strength2", "strength3", "strength4", "strength5"],
  "improvements": ["improvement1", "improvement2", "improvement3"],
  "talkingPoints": ["point1", "point2", "point3", "point4", "point5"],
  "score": 85
}

Guidelines:
- Summary: Focus on their professional background, years of experience, and key areas of expertise
- Strengths: List 3-5 key strengths focusing on job readiness, leadership, technical skills, or communication. Be specific and highlight what makes them stand out
- Improvements: List 2-3 constructive improvement areas. Frame positively (e.g., "Consider expanding..." instead of "Lacks...")
- Talking Points: Provide 3-5 concise, conversational points suitable for a 60-second video pitch. Make them specific to this candidate
- Score: Assign a score between 75-100 based on presentation, clarity, and relevance. Never go below 75 - focus on encouragement

Resume content:
%s
`

func buildUserPrompt(resumeText string) string {
	return fmt.Sprintf(userPromptTemplate, resumeText)
}
